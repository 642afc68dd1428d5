package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func TestRespond(t *testing.T) {
	rr := httptest.NewRecorder()
	Respond(rr, http.StatusCreated, map[string]string{"id": "x"}, "created")
	env := decodeEnvelope(t, rr)
	if rr.Code != 201 || env.StatusCode != 201 || !env.Success || env.Message != "created" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestFail_DataIsNull(t *testing.T) {
	rr := httptest.NewRecorder()
	Fail(rr, http.StatusNotFound, "video not found")
	if !strings.Contains(rr.Body.String(), `"data":null`) {
		t.Errorf("expected data:null, got %s", rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	if env.Success || env.StatusCode != 404 {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestFailErr(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	rr := httptest.NewRecorder()
	FailErr(rr, req, NewError(http.StatusForbidden, "not the owner"))
	if rr.Code != 403 {
		t.Errorf("APIError status = %d, want 403", rr.Code)
	}

	rr = httptest.NewRecorder()
	FailErr(rr, req, errors.New("db exploded"))
	if rr.Code != 500 {
		t.Errorf("plain error status = %d, want 500", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "exploded") {
		t.Error("internal error text must not leak")
	}
}

type loginBody struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"notblank"`
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"ok username", `{"username":"a","password":"secret"}`, ""},
		{"ok email", `{"email":"a@b.io","password":"secret"}`, ""},
		{"blank password", `{"username":"a","password":"   "}`, "password is required"},
		{"no identifier", `{"password":"x"}`, "username or email is required"},
		{"malformed", `{`, "invalid request body"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tc.body))
			var dst loginBody
			err := DecodeAndValidate(req, &dst)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Status != 400 {
				t.Fatalf("want 400 APIError, got %v", err)
			}
			if apiErr.Message != tc.wantErr {
				t.Errorf("message = %q, want %q", apiErr.Message, tc.wantErr)
			}
		})
	}
}

func TestIDParam(t *testing.T) {
	withParam := func(v string) *http.Request {
		req := httptest.NewRequest("GET", "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("videoId", v)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	id := "3f0c8a52-6a8e-4a8e-9d2a-0c1e2f3a4b5c"
	got, err := IDParam(withParam(id), "videoId")
	if err != nil || got != id {
		t.Errorf("IDParam = %q, %v", got, err)
	}
	if _, err := IDParam(withParam("not-a-uuid"), "videoId"); err == nil {
		t.Error("expected error for malformed id")
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query       string
		page, limit int
	}{
		{"", 1, 10},
		{"page=3&limit=20", 3, 20},
		{"page=0&limit=-4", 1, 10},
		{"limit=1000", 1, 100},
		{"page=abc", 1, 10},
	}
	for _, tc := range tests {
		p := ParsePage(httptest.NewRequest("GET", "/?"+tc.query, nil))
		if p.Page != tc.page || p.Limit != tc.limit {
			t.Errorf("ParsePage(%q) = %+v, want page=%d limit=%d", tc.query, p, tc.page, tc.limit)
		}
	}
	if off := (PageParams{Page: 3, Limit: 10}).Offset(); off != 20 {
		t.Errorf("Offset = %d, want 20", off)
	}
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{4, 5, 6}, 23, PageParams{Page: 2, Limit: 3})
	if p.TotalPages != 8 || !p.HasPrevPage || !p.HasNextPage {
		t.Errorf("unexpected meta: %+v", p)
	}
	if *p.PrevPage != 1 || *p.NextPage != 3 {
		t.Errorf("prev/next = %d/%d", *p.PrevPage, *p.NextPage)
	}

	last := NewPaginated[int](nil, 3, PageParams{Page: 1, Limit: 10})
	if last.Docs == nil || last.HasNextPage || last.NextPage != nil || last.PrevPage != nil {
		t.Errorf("unexpected single page meta: %+v", last)
	}
}
