package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testToken = "AB12cd-34:567"

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(Config{
		Credentials: Credentials{PSID: "test-psid", PSIDTS: "test-psidts"},
		Timeout:     5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	c.initURL = server.URL + "/app"
	c.generateURL = server.URL + "/generate"
	c.rotateURL = server.URL + "/rotate"
	return c
}

func appShell(w http.ResponseWriter) {
	fmt.Fprintf(w, `<script>window.WIZ_global_data = {"SNlM0e":%q};</script>`, testToken)
}

// candidatePayload builds the inner response document the web app streams,
// with the reply text at the position the client reads it from.
func candidatePayload(t *testing.T, text string) string {
	t.Helper()
	payload, err := json.Marshal([]interface{}{
		nil,
		[]interface{}{"c_1", "r_1"},
		nil,
		nil,
		[]interface{}{[]interface{}{"rc_1", []interface{}{text}}},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return string(payload)
}

func writeGenerateBody(t *testing.T, w http.ResponseWriter, texts ...string) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString(")]}'\n\n")
	for _, text := range texts {
		appendFrame(&sb, wrbFrame(t, candidatePayload(t, text)))
	}
	fmt.Fprint(w, sb.String())
}

func TestClientInit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/app", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(cookiePSID); err != nil {
			t.Error("init request missing __Secure-1PSID cookie")
		}
		if _, err := r.Cookie(cookiePSIDTS); err != nil {
			t.Error("init request missing __Secure-1PSIDTS cookie")
		}
		appShell(w)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server)
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	c.mu.RLock()
	token := c.atToken
	c.mu.RUnlock()
	if token != testToken {
		t.Errorf("atToken = %q, want %q", token, testToken)
	}
}

func TestClientInitRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := newTestClient(t, server)
	err := c.Init(context.Background())

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Init() error = %v, want AuthError", err)
	}
}

func TestClientInitNoToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>Sign in to continue</html>`)
	}))
	defer server.Close()

	c := newTestClient(t, server)
	err := c.Init(context.Background())

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Init() error = %v, want AuthError", err)
	}
}

func TestClientInitUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server)
	err := c.Init(context.Background())

	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Init() error = %v, want UnavailableError", err)
	}
}

func TestClientGenerate(t *testing.T) {
	model, err := ResolveModel("gemini-2.5-pro")
	if err != nil {
		t.Fatalf("ResolveModel() error = %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/app", func(w http.ResponseWriter, r *http.Request) { appShell(w) })
	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("bl"); got != buildLabel {
			t.Errorf("bl = %q, want %q", got, buildLabel)
		}
		if got := r.URL.Query().Get("rt"); got != "c" {
			t.Errorf("rt = %q, want c", got)
		}
		if got := r.PostFormValue("at"); got != testToken {
			t.Errorf("at = %q, want %q", got, testToken)
		}
		if fReq := r.PostFormValue("f.req"); !strings.Contains(fReq, "say hello") {
			t.Errorf("f.req = %q, want prompt inside", fReq)
		}
		if got := r.Header.Get(modelHeader); got != model.Header {
			t.Errorf("model header = %q, want %q", got, model.Header)
		}
		writeGenerateBody(t, w, "Hello", "Hello!")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server)
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	reply, err := c.Generate(context.Background(), "say hello", model)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if reply.Kind != ReplyComplete {
		t.Errorf("reply.Kind = %v, want ReplyComplete", reply.Kind)
	}
	if reply.Text != "Hello!" {
		t.Errorf("reply.Text = %q, want %q", reply.Text, "Hello!")
	}
}

func TestClientGenerateUnspecifiedModel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/app", func(w http.ResponseWriter, r *http.Request) { appShell(w) })
	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(modelHeader); got != "" {
			t.Errorf("model header = %q, want it absent", got)
		}
		writeGenerateBody(t, w, "ok")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server)
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	model, _ := ResolveModel(ModelUnspecified)
	if _, err := c.Generate(context.Background(), "hi", model); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
}

func TestClientGenerateNotInitialized(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := newTestClient(t, server)
	model, _ := ResolveModel(ModelUnspecified)

	_, err := c.Generate(context.Background(), "hi", model)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Generate() error = %v, want AuthError", err)
	}
}

func TestClientGenerateNoCandidates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/app", func(w http.ResponseWriter, r *http.Request) { appShell(w) })
	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		var sb strings.Builder
		sb.WriteString(")]}'\n\n")
		appendFrame(&sb, `[["di",42]]`)
		fmt.Fprint(w, sb.String())
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server)
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	model, _ := ResolveModel(ModelUnspecified)
	_, err := c.Generate(context.Background(), "hi", model)

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Generate() error = %v, want AuthError", err)
	}
}

func TestClientGenerateStream(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/app", func(w http.ResponseWriter, r *http.Request) { appShell(w) })
	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		writeGenerateBody(t, w, "He", "Hello", "Hello!")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server)
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	model, _ := ResolveModel(ModelUnspecified)
	reply, err := c.GenerateStream(context.Background(), "say hello", model)
	if err != nil {
		t.Fatalf("GenerateStream() error = %v", err)
	}
	if reply.Kind != ReplyStreaming {
		t.Fatalf("reply.Kind = %v, want ReplyStreaming", reply.Kind)
	}

	var got []string
	for delta := range reply.Deltas {
		if delta.Err != nil {
			t.Fatalf("delta.Err = %v", delta.Err)
		}
		got = append(got, delta.Content)
	}

	want := []string{"He", "llo", "!"}
	if len(got) != len(want) {
		t.Fatalf("deltas = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delta[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestClientGenerateStreamExpiredSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/app", func(w http.ResponseWriter, r *http.Request) { appShell(w) })
	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ")]}'\n\n")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server)
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	model, _ := ResolveModel(ModelUnspecified)
	reply, err := c.GenerateStream(context.Background(), "hi", model)
	if err != nil {
		t.Fatalf("GenerateStream() error = %v", err)
	}

	var sawErr error
	for delta := range reply.Deltas {
		sawErr = delta.Err
	}

	var authErr *AuthError
	if !errors.As(sawErr, &authErr) {
		t.Fatalf("stream error = %v, want AuthError", sawErr)
	}
}

func TestClientRotateCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		http.SetCookie(w, &http.Cookie{Name: cookiePSIDTS, Value: "fresh-ts"})
	}))
	defer server.Close()

	c := newTestClient(t, server)
	creds, err := c.RotateCookies(context.Background())
	if err != nil {
		t.Fatalf("RotateCookies() error = %v", err)
	}

	if creds.PSID != "test-psid" {
		t.Errorf("creds.PSID = %q, want test-psid", creds.PSID)
	}
	if creds.PSIDTS != "fresh-ts" {
		t.Errorf("creds.PSIDTS = %q, want fresh-ts", creds.PSIDTS)
	}

	c.mu.RLock()
	held := c.creds.PSIDTS
	c.mu.RUnlock()
	if held != "fresh-ts" {
		t.Errorf("client kept PSIDTS %q, want fresh-ts", held)
	}
}

func TestClientRotateCookiesNoCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	c := newTestClient(t, server)
	_, err := c.RotateCookies(context.Background())

	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("RotateCookies() error = %v, want UnavailableError", err)
	}
}

func TestNewClientInvalidProxy(t *testing.T) {
	_, err := NewClient(Config{ProxyURL: ":"})
	if err == nil {
		t.Fatal("NewClient() with invalid proxy url returned nil error")
	}
}
