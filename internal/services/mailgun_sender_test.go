package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMailgunSender_Send(t *testing.T) {
	var gotPath, gotUser, gotPass string
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<1@mg>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	s := NewMailgunSender(srv.URL+"/", "key-123", "mg.example.com", "noreply@example.com")
	s.SetHTTPClient(srv.Client())

	err := s.Send(context.Background(), Message{To: "a@x.com", Subject: "Hi", Text: "plain"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotPath != "/mg.example.com/messages" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotUser != "api" || gotPass != "key-123" {
		t.Fatalf("basic auth = %q:%q", gotUser, gotPass)
	}
	want := map[string]string{
		"from":    "noreply@example.com",
		"to":      "a@x.com",
		"subject": "Hi",
		"text":    "plain",
		"html":    "plain",
	}
	for k, v := range want {
		if gotForm[k] != v {
			t.Fatalf("form[%s] = %q, want %q", k, gotForm[k], v)
		}
	}
}

func TestMailgunSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewMailgunSender(srv.URL, "bad", "mg.example.com", "noreply@example.com")
	s.SetHTTPClient(srv.Client())

	if err := s.Send(context.Background(), Message{To: "a@x.com", Subject: "Hi", Text: "t"}); err == nil {
		t.Fatalf("expected error for 401 response")
	}
}

func TestMailgunSender_NotConfigured(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	s := NewMailgunSender(srv.URL, "", "mg.example.com", "noreply@example.com")
	s.SetHTTPClient(srv.Client())

	if err := s.Send(context.Background(), Message{To: "a@x.com"}); err == nil {
		t.Fatalf("expected error when api key is missing")
	}
	if called {
		t.Fatalf("no request should be made without credentials")
	}
}

func TestNewMailgunSender_DefaultBase(t *testing.T) {
	s := NewMailgunSender("", "k", "d", "f")
	if s.baseURL != DefaultMailgunAPIBase {
		t.Fatalf("baseURL = %q", s.baseURL)
	}
}
