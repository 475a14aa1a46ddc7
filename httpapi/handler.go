// Package httpapi serves read-only queries over a collection keyed by strings
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ridge/multikey/collection"
	"github.com/ridge/multikey/thttp"
)

// Stats is the response of /stats
type Stats struct {
	Count      int `json:"count"`
	Slots      int `json:"slots"`
	Tombstones int `json:"tombstones"`
}

// NewHandler returns an HTTP handler answering queries against the current
// version in the holder. Errors are answered with thttp.ErrorBody.
//
// Secondary levels are queried with string keys, so only levels keyed by
// strings can be searched by key.
func NewHandler[T any](holder *Holder[T]) http.Handler {
	h := handler[T]{holder: holder}

	router := mux.NewRouter()
	router.Path("/items").Methods(http.MethodGet).HandlerFunc(h.items)
	router.Path("/items/{key}").Methods(http.MethodGet).HandlerFunc(h.item)
	router.Path("/levels").Methods(http.MethodGet).HandlerFunc(h.levels)
	router.Path("/levels/{level}").Methods(http.MethodGet).HandlerFunc(h.levelKeys)
	router.Path("/levels/{level}/{key}").Methods(http.MethodGet).HandlerFunc(h.search)
	router.Path("/stats").Methods(http.MethodGet).HandlerFunc(h.stats)
	return router
}

type handler[T any] struct {
	holder *Holder[T]
}

func (h handler[T]) items(w http.ResponseWriter, r *http.Request) {
	thttp.WriteJSON(w, r, http.StatusOK, h.holder.Load().Values())
}

func (h handler[T]) item(w http.ResponseWriter, r *http.Request) {
	item, err := h.holder.Load().Get(mux.Vars(r)["key"])
	switch {
	case errors.Is(err, collection.ErrKeyNotFound):
		thttp.WriteError(w, r, http.StatusNotFound, err)
	case err != nil:
		thttp.WriteError(w, r, http.StatusInternalServerError, err)
	default:
		thttp.WriteJSON(w, r, http.StatusOK, item)
	}
}

func (h handler[T]) levels(w http.ResponseWriter, r *http.Request) {
	thttp.WriteJSON(w, r, http.StatusOK, h.holder.Load().Schema().Levels())
}

func (h handler[T]) levelKeys(w http.ResponseWriter, r *http.Request) {
	c := h.holder.Load()
	level := mux.Vars(r)["level"]
	if _, ok := c.Schema().Level(level); !ok {
		thttp.WriteError(w, r, http.StatusNotFound, errors.New("unknown index "+level))
		return
	}
	thttp.WriteJSON(w, r, http.StatusOK, c.LevelKeys(level))
}

func (h handler[T]) search(w http.ResponseWriter, r *http.Request) {
	c := h.holder.Load()
	vars := mux.Vars(r)
	if _, ok := c.Schema().Level(vars["level"]); !ok {
		thttp.WriteError(w, r, http.StatusNotFound, errors.New("unknown index "+vars["level"]))
		return
	}
	thttp.WriteJSON(w, r, http.StatusOK, c.Search(vars["level"], vars["key"]))
}

func (h handler[T]) stats(w http.ResponseWriter, r *http.Request) {
	c := h.holder.Load()
	thttp.WriteJSON(w, r, http.StatusOK, Stats{Count: c.Count(), Slots: c.Slots(), Tombstones: c.Tombstones()})
}
