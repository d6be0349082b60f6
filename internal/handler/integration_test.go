package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/msomdec/student-portal/internal/handler"
	"github.com/msomdec/student-portal/internal/service"
)

func newTestClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // don't follow redirects automatically
		},
	}
}

func TestIntegration_SignupLoginProfileUpdate(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.newMux())
	defer srv.Close()

	client := newTestClient(t)

	// 1. Sign up a new student.
	resp, err := client.PostForm(srv.URL+"/auth/signup", url.Values{
		"firstname":       {"Jane"},
		"lastname":        {"Doe"},
		"email":           {"jane@x.com"},
		"password":        {"Abcdef1"},
		"confirmPassword": {"Abcdef1"},
	})
	if err != nil {
		t.Fatalf("POST /auth/signup: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Registration successful") {
		t.Fatal("signup: expected success message in page")
	}

	// Signup must not log the user in.
	resp, err = client.Get(srv.URL + "/dashboard")
	if err != nil {
		t.Fatalf("GET /dashboard before login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("dashboard before login: expected 303, got %d", resp.StatusCode)
	}

	// 2. Login with the new credentials.
	resp, err = client.PostForm(srv.URL+"/auth/login", url.Values{
		"email":    {"jane@x.com"},
		"password": {"Abcdef1"},
	})
	if err != nil {
		t.Fatalf("POST /auth/login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login: expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Fatalf("login: expected redirect to /dashboard, got %s", loc)
	}

	// Verify the session cookie was set.
	srvURL, _ := url.Parse(srv.URL)
	var hasSession bool
	for _, c := range client.Jar.Cookies(srvURL) {
		if c.Name == handler.SessionCookieName && c.Value != "" {
			hasSession = true
		}
	}
	if !hasSession {
		t.Fatal("expected session cookie after login")
	}

	// 3. Dashboard renders the student's record.
	resp, err = client.Get(srv.URL + "/dashboard")
	if err != nil {
		t.Fatalf("GET /dashboard: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Jane") {
		t.Fatal("dashboard: expected student name in page")
	}
	if !strings.Contains(string(body), "Not set") {
		t.Fatal("dashboard: expected unset profile fields for a fresh account")
	}

	// 4. Profile page renders with unset fields.
	resp, err = client.Get(srv.URL + "/dashboard/profile")
	if err != nil {
		t.Fatalf("GET /dashboard/profile: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Jane") {
		t.Fatal("profile: expected student name in page")
	}

	// 5. Update the academic details.
	resp, err = client.PostForm(srv.URL+"/dashboard/update", url.Values{
		"enrollmentNo": {"E1"},
		"department":   {"CS"},
		"semester":     {"3"},
	})
	if err != nil {
		t.Fatalf("POST /dashboard/update: %v", err)
	}
	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode update response: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !result.Success {
		t.Fatalf("update: expected success, got status %d, body %+v", resp.StatusCode, result)
	}

	// 6. Profile reflects the update.
	resp, err = client.Get(srv.URL + "/dashboard/profile")
	if err != nil {
		t.Fatalf("GET /dashboard/profile after update: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	page := string(body)
	for _, want := range []string{"E1", "CS", "3"} {
		if !strings.Contains(page, want) {
			t.Fatalf("profile after update: expected %q in page", want)
		}
	}

	// 7. Logout clears the session.
	resp, err = client.Get(srv.URL + "/auth/logout")
	if err != nil {
		t.Fatalf("GET /auth/logout: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("logout: expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("logout: expected redirect to /, got %s", loc)
	}

	// 8. Dashboard no longer authenticates.
	resp, err = client.Get(srv.URL + "/dashboard")
	if err != nil {
		t.Fatalf("GET /dashboard after logout: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("dashboard after logout: expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/auth/login" {
		t.Fatalf("dashboard after logout: expected redirect to /auth/login, got %s", loc)
	}
}

func TestIntegration_SignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.newMux())
	defer srv.Close()

	client := newTestClient(t)

	form := url.Values{
		"firstname":       {"Jane"},
		"lastname":        {"Doe"},
		"email":           {"dup@x.com"},
		"password":        {"Abcdef1"},
		"confirmPassword": {"Abcdef1"},
	}

	resp, err := client.PostForm(srv.URL+"/auth/signup", form)
	if err != nil {
		t.Fatalf("first signup: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first signup: expected 201, got %d", resp.StatusCode)
	}

	resp, err = client.PostForm(srv.URL+"/auth/signup", form)
	if err != nil {
		t.Fatalf("second signup: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("second signup: expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Email already registered") {
		t.Fatal("second signup: expected email-taken message")
	}
}

func TestIntegration_SignupValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.newMux())
	defer srv.Close()

	client := newTestClient(t)

	tests := []struct {
		name    string
		form    url.Values
		wantMsg string
	}{
		{
			"missing fields",
			url.Values{"firstname": {"Jane"}},
			"all fields are required",
		},
		{
			"bad email",
			url.Values{
				"firstname": {"Jane"}, "lastname": {"Doe"}, "email": {"nope"},
				"password": {"Abcdef1"}, "confirmPassword": {"Abcdef1"},
			},
			"valid email",
		},
		{
			"password mismatch",
			url.Values{
				"firstname": {"Jane"}, "lastname": {"Doe"}, "email": {"a@b.com"},
				"password": {"Abcdef1"}, "confirmPassword": {"Abcdef2"},
			},
			"do not match",
		},
		{
			"weak password",
			url.Values{
				"firstname": {"Jane"}, "lastname": {"Doe"}, "email": {"a@b.com"},
				"password": {"abcdef1"}, "confirmPassword": {"abcdef1"},
			},
			"uppercase",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := client.PostForm(srv.URL+"/auth/signup", tc.form)
			if err != nil {
				t.Fatalf("POST /auth/signup: %v", err)
			}
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			if !strings.Contains(string(body), tc.wantMsg) {
				t.Fatalf("expected message containing %q in page", tc.wantMsg)
			}
		})
	}
}

func TestIntegration_LoginFailuresAreUniform(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.newMux())
	defer srv.Close()

	client := newTestClient(t)

	if _, err := env.auth.SignUp(context.Background(), "Jane", "Doe", "jane@x.com", "Abcdef1", "Abcdef1"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	attempt := func(email, password string) (int, string) {
		resp, err := client.PostForm(srv.URL+"/auth/login", url.Values{
			"email": {email}, "password": {password},
		})
		if err != nil {
			t.Fatalf("POST /auth/login: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return resp.StatusCode, string(body)
	}

	wrongStatus, wrongBody := attempt("jane@x.com", "Wrongpw1")
	unknownStatus, unknownBody := attempt("nobody@x.com", "Abcdef1")

	if wrongStatus != http.StatusUnauthorized || unknownStatus != http.StatusUnauthorized {
		t.Fatalf("expected 401 for both failures, got %d and %d", wrongStatus, unknownStatus)
	}
	if !strings.Contains(wrongBody, "Invalid email or password") {
		t.Fatal("expected generic message for wrong password")
	}
	if !strings.Contains(unknownBody, "Invalid email or password") {
		t.Fatal("expected the same generic message for unknown email")
	}
}

func TestIntegration_UpdateRequiresFields(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.newMux())
	defer srv.Close()

	client := newTestClient(t)
	loginAs(t, client, srv.URL, env, "jane@x.com", "Abcdef1")

	resp, err := client.PostForm(srv.URL+"/dashboard/update", url.Values{
		"enrollmentNo": {"E1"},
	})
	if err != nil {
		t.Fatalf("POST /dashboard/update: %v", err)
	}
	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode update response: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if result.Success {
		t.Fatal("expected success=false")
	}
	if !strings.Contains(result.Message, "Required fields are missing") {
		t.Fatalf("expected missing-fields message, got %q", result.Message)
	}
}

func TestIntegration_StaleSessionSelfHeals(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.newMux())
	defer srv.Close()

	client := newTestClient(t)

	// A session referencing a user that no longer exists.
	sess, err := env.sessions.Create(context.Background(), 9999, "ghost@x.com")
	if err != nil {
		t.Fatalf("Create session: %v", err)
	}
	srvURL, _ := url.Parse(srv.URL)
	client.Jar.SetCookies(srvURL, []*http.Cookie{{Name: handler.SessionCookieName, Value: sess.ID}})

	for _, path := range []string{"/dashboard", "/dashboard/profile"} {
		// Recreate the session for the second round; the first destroyed it.
		if _, err := env.sessions.Get(context.Background(), sess.ID); err != nil {
			sess, err = env.sessions.Create(context.Background(), 9999, "ghost@x.com")
			if err != nil {
				t.Fatalf("recreate session: %v", err)
			}
			client.Jar.SetCookies(srvURL, []*http.Cookie{{Name: handler.SessionCookieName, Value: sess.ID}})
		}

		resp, err := client.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("%s: expected 303, got %d", path, resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/auth/login" {
			t.Fatalf("%s: expected redirect to /auth/login, got %s", path, loc)
		}

		// The stale session was destroyed server-side.
		if _, err := env.sessions.Get(context.Background(), sess.ID); err == nil {
			t.Fatalf("%s: expected stale session to be destroyed", path)
		}
	}
}

func TestIntegration_HomeRedirectsWhenAuthenticated(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.newMux())
	defer srv.Close()

	client := newTestClient(t)

	// Anonymous: landing page.
	resp, err := client.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("anonymous home: expected 200, got %d", resp.StatusCode)
	}

	loginAs(t, client, srv.URL, env, "jane@x.com", "Abcdef1")

	resp, err = client.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET / while logged in: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("authenticated home: expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Fatalf("authenticated home: expected redirect to /dashboard, got %s", loc)
	}
}

func TestIntegration_AnonOnlyPagesRedirectWhenAuthenticated(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.newMux())
	defer srv.Close()

	client := newTestClient(t)
	loginAs(t, client, srv.URL, env, "jane@x.com", "Abcdef1")

	for _, path := range []string{"/auth/signup", "/auth/login"} {
		resp, err := client.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("%s: expected 303 for logged-in user, got %d", path, resp.StatusCode)
		}
	}
}

func TestIntegration_UnknownPathIs404(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.newMux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/no-such-page")
	if err != nil {
		t.Fatalf("GET /no-such-page: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestIntegration_LoginRateLimited(t *testing.T) {
	env := newTestEnv(t)
	// A tight limiter for this test only.
	env.limiter = memoryLimiter(2)
	srv := httptest.NewServer(env.newMux())
	defer srv.Close()

	client := newTestClient(t)

	form := url.Values{"email": {"jane@x.com"}, "password": {"Wrongpw1"}}
	var last int
	for i := 0; i < 3; i++ {
		resp, err := client.PostForm(srv.URL+"/auth/login", form)
		if err != nil {
			t.Fatalf("POST /auth/login: %v", err)
		}
		resp.Body.Close()
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst exhausted, got %d", last)
	}
}

func loginAs(t *testing.T, client *http.Client, baseURL string, env *testEnv, email, password string) {
	t.Helper()
	if _, err := env.auth.SignUp(context.Background(), "Jane", "Doe", email, password, password); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	resp, err := client.PostForm(baseURL+"/auth/login", url.Values{
		"email": {email}, "password": {password},
	})
	if err != nil {
		t.Fatalf("POST /auth/login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login: expected 303, got %d", resp.StatusCode)
	}
}

func memoryLimiter(burst float64) *service.LoginLimiter {
	return service.NewLoginLimiter(0, burst)
}
