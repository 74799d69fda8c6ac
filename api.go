/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
)

const defaultCandidateCount = 10

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(v)
}

func parseFilters(q url.Values) SearchFilters {
	f := SearchFilters{
		Query:    q.Get("query"),
		Category: q.Get("category"),
		OpenOnly: q.Get("isOpen") == "true",
	}
	if v, err := strconv.ParseFloat(q.Get("minRating"), 64); err == nil {
		f.MinRating = v
	}
	if v, err := strconv.ParseFloat(q.Get("maxRating"), 64); err == nil {
		f.MaxRating = v
	}
	if v, err := strconv.Atoi(q.Get("minReviews")); err == nil {
		f.MinReviews = v
	}
	return f
}

func parseCount(q url.Values) int {
	if v, err := strconv.Atoi(q.Get("count")); err == nil && v >= 0 {
		return v
	}
	return defaultCandidateCount
}

// serveRestaurants answers catalog queries. Results are candidate-shaped and
// can be sent back verbatim in a set-candidate-set event.
func serveRestaurants(cfg *Config, cat *Catalog, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		q := r.URL.Query()
		action := q.Get("action")

		var result any
		switch action {
		case "search":
			result = cat.Search(parseFilters(q))
		case "random":
			result = cat.Random(parseCount(q), parseFilters(q))
		case "top":
			result = cat.Top(parseCount(q), parseFilters(q))
		case "categories":
			result = cat.Categories()
		default:
			result = cat.Random(defaultCandidateCount, SearchFilters{MinRating: 4.0})
		}

		if err := writeJSON(cfg, w, http.StatusOK, result); err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Restaurants (%s) to %s in %s",
			action,
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveRestaurant(cfg *Config, cat *Catalog, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		restaurant, ok := cat.ByID(p.ByName("id"))
		if !ok {
			_ = writeJSON(cfg, w, http.StatusNotFound, map[string]string{"error": "Restaurant not found"})

			return
		}

		if err := writeJSON(cfg, w, http.StatusOK, restaurant); err != nil {
			errs <- err

			return
		}
	}
}

// serveRoomState is the read side of a room for collaborators that do not
// hold a websocket. It never creates rooms.
func serveRoomState(cfg *Config, reg *Registry, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		hub, ok := reg.Get(p.ByName("room"))
		if !ok {
			_ = writeJSON(cfg, w, http.StatusNotFound, map[string]string{"error": "Room not found"})

			return
		}

		if err := writeJSON(cfg, w, http.StatusOK, hub.snapshot()); err != nil {
			errs <- err

			return
		}
	}
}
