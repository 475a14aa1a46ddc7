package collection

import "errors"

// ErrDuplicateKey means two live items would share a primary key
var ErrDuplicateKey = errors.New("duplicate primary key")

// ErrKeyNotFound means no live item has the requested primary key
var ErrKeyNotFound = errors.New("primary key not found")
