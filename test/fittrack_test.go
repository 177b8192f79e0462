package test

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) get(path string) *http.Response {
	s.T().Helper()
	resp, err := s.httpClient.Get(serverEndpoint + path)
	require.NoError(s.T(), err)
	return resp
}

func (s *IntegrationTestSuite) postForm(path string, form url.Values) *http.Response {
	s.T().Helper()
	resp, err := s.httpClient.PostForm(serverEndpoint+path, form)
	require.NoError(s.T(), err)
	return resp
}

func readBody(resp *http.Response) string {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("read body: %s", err)
	}
	return string(body)
}

func (s *IntegrationTestSuite) TestFitTrackFlow() {
	t := s.T()

	// no session yet, pages redirect to login, api gives structured 401
	resp := s.get("/dashboard")
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = s.get("/api/exercises")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"unauthorized"}`, readBody(resp))

	// register alice
	resp = s.postForm("/register", url.Values{
		"username":         {"alice"},
		"password":         {"secret123"},
		"confirm_password": {"secret123"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// same username again
	resp = s.postForm("/register", url.Values{
		"username":         {"alice"},
		"password":         {"other-pass"},
		"confirm_password": {"other-pass"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(resp), "Username already exists")

	// mismatched passwords
	resp = s.postForm("/register", url.Values{
		"username":         {"bob"},
		"password":         {"secret123"},
		"confirm_password": {"secret321"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(resp), "Passwords do not match")

	// wrong password
	resp = s.postForm("/login", url.Values{
		"username": {"alice"},
		"password": {"wrong-pass"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(resp), "Invalid username or password")

	// good login, session cookie lands in the jar
	resp = s.postForm("/login", url.Values{
		"username": {"alice"},
		"password": {"secret123"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp = s.get("/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(resp), "alice")

	// create a routine
	resp = s.postForm("/add_routine", url.Values{
		"name":        {"Push Day"},
		"description": {"chest and triceps"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/routines", resp.Header.Get("Location"))

	resp = s.get("/routines")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(resp), "Push Day")

	// nothing logged yet
	resp = s.get("/api/exercises")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"exercises":[]}`, readBody(resp))

	// log a workout against the new routine
	resp = s.postForm("/log_workout", url.Values{
		"routine_id":      {"1"},
		"date":            {"2024-01-01"},
		"exercise_name[]": {"Bench"},
		"sets[]":          {"3"},
		"reps[]":          {"10"},
		"weight[]":        {"60"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/history", resp.Header.Get("Location"))

	resp = s.get("/history")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	historyBody := readBody(resp)
	assert.Contains(t, historyBody, "2024-01-01")
	assert.Contains(t, historyBody, "Push Day")

	resp = s.get("/workout/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detailBody := readBody(resp)
	assert.Contains(t, detailBody, "Bench")
	assert.Contains(t, detailBody, "60")

	// workout of another (nonexistent) id flashes and redirects back
	resp = s.get("/workout/999")
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/history", resp.Header.Get("Location"))

	// progress chart data
	resp = s.get("/api/progress/Bench")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"labels":["2024-01-01"],"weights":[60]}`, readBody(resp))

	// exercise names match exactly, no case folding
	resp = s.get("/api/progress/bench")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"labels":[],"weights":[]}`, readBody(resp))

	resp = s.get("/api/exercises")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"exercises":["Bench"]}`, readBody(resp))

	resp = s.get("/progress/Bench")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(resp), "Bench")

	// logout kills the session
	resp = s.get("/logout")
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = s.get("/dashboard")
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func (s *IntegrationTestSuite) TestMetricsEndpoint() {
	t := s.T()

	resp, err := http.Get("http://localhost:2112/metrics")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(readBody(resp), "fittrack"))
}
