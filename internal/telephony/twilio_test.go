package telephony

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTwilioPlaceCall(t *testing.T) {
	var gotPath, gotTo, gotURL, gotCallback string
	var gotEvents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotPath = r.URL.Path
		gotTo = r.PostFormValue("To")
		gotURL = r.PostFormValue("Url")
		gotCallback = r.PostFormValue("StatusCallback")
		gotEvents = r.PostForm["StatusCallbackEvent"]
		if user, pass, ok := r.BasicAuth(); !ok || user != "AC123" || pass != "token" {
			t.Errorf("unexpected basic auth: %q %q", user, pass)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"CA999","status":"queued"}`))
	}))
	defer srv.Close()

	p := NewTwilioProvider(TwilioOptions{
		AccountSID: "AC123",
		AuthToken:  "token",
		FromNumber: "+15005550006",
		APIBaseURL: srv.URL,
	})

	res, err := p.PlaceCall(context.Background(), PlaceCallRequest{
		To:                "+919876543210",
		PromptURL:         "https://app.example/api/v1/voice/twiml",
		StatusCallbackURL: "https://app.example/api/v1/voice/status",
	})
	if err != nil {
		t.Fatalf("place call: %v", err)
	}
	if res.CallID != "CA999" || res.Status != "queued" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gotPath != "/2010-04-01/Accounts/AC123/Calls.json" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotTo != "+919876543210" || gotURL != "https://app.example/api/v1/voice/twiml" {
		t.Fatalf("unexpected form: to=%q url=%q", gotTo, gotURL)
	}
	if gotCallback != "https://app.example/api/v1/voice/status" || len(gotEvents) != 4 {
		t.Fatalf("unexpected status callback wiring: %q %v", gotCallback, gotEvents)
	}
}

func TestTwilioPlaceCallProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":20003,"message":"Authenticate"}`))
	}))
	defer srv.Close()

	p := NewTwilioProvider(TwilioOptions{
		AccountSID: "AC123",
		AuthToken:  "bad",
		FromNumber: "+15005550006",
		APIBaseURL: srv.URL,
	})

	_, err := p.PlaceCall(context.Background(), PlaceCallRequest{To: "+919876543210", PromptURL: "https://x"})
	if !errors.Is(err, ErrDispatchFailed) {
		t.Fatalf("expected ErrDispatchFailed, got %v", err)
	}
}

func TestTwilioPlaceCallUnconfigured(t *testing.T) {
	p := NewTwilioProvider(TwilioOptions{})
	_, err := p.PlaceCall(context.Background(), PlaceCallRequest{To: "+919876543210"})
	if !errors.Is(err, ErrDispatchFailed) {
		t.Fatalf("expected ErrDispatchFailed, got %v", err)
	}
}
