package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quiet/internal/apperr"
	"github.com/starford/quiet/internal/checksum"
	"github.com/starford/quiet/internal/postservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *postservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *postservice.Service) *Handler {
	return &Handler{svc: svc}
}

// categoryPath extracts the category path from the URL (everything after
// /api/categories/). Encoded slashes are accepted.
func categoryPath(r *http.Request) []string {
	raw := chi.URLParam(r, "*")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	return postservice.SplitCategory(raw)
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List posts, newest first
//	@Tags			posts
//	@Produce		json
//	@Param			page	query		int	false	"1-based page number"
//	@Success		200		{object}	PageResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: page %q", apperr.ErrInvalidArgument, raw))
			return
		}
		page = n
	}

	view, err := h.svc.ListPage(r.Context(), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetPostByURI handles GET /api/posts/by-uri?uri=.
//
//	@Summary		Get a post by its date or category URI
//	@Tags			posts
//	@Produce		json
//	@Param			uri	query		string	true	"Post URI, e.g. /2023/01/05/hello.html"
//	@Success		200	{object}	PostDetail
//	@Success		304
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/by-uri [get]
func (h *Handler) GetPostByURI(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.GetByURI(r.Context(), strings.TrimSpace(r.URL.Query().Get("uri")))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", checksum.ETag(post.Checksum))
	if inm := r.Header.Get("If-None-Match"); inm != "" && checksum.Matches(inm, post.Checksum) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Category handles GET /api/categories and GET /api/categories/*.
//
//	@Summary		List the posts and subcategories of a category
//	@Tags			categories
//	@Produce		json
//	@Param			path	path		string	false	"Category path, e.g. tech/go"
//	@Success		200		{object}	CategoryResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{path} [get]
func (h *Handler) Category(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Category(r.Context(), categoryPath(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Tree handles GET /api/tree.
//
//	@Summary		Full category hierarchy with post counts
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	TreeNode
//	@Security		BearerAuth
//	@Router			/tree [get]
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, treeNode(h.svc.Tree(r.Context())))
}
