package restapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/attendlab/punch-agent-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() string {
	return base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
}

func TestClient_SubmitPunch_Success(t *testing.T) {
	var gotAuth string
	var gotBody attendance.SubmitPunchRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/attendance/punch", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","message":"Checked in","data":{"date":"2026-08-31"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "token-123")
	resp, err := client.SubmitPunch(context.Background(), attendance.SubmitPunchRequest{
		UserID:    "user-1",
		Images:    []string{testImage()},
		IsCheckIn: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.Equal(t, "user-1", gotBody.UserID)
	assert.True(t, gotBody.IsCheckIn)
	assert.Equal(t, "Checked in", resp.Message)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "2026-08-31", *resp.Data.Date)
}

func TestClient_SubmitPunch_ServerErrorSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"You are outside the allowed area"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.SubmitPunch(context.Background(), attendance.SubmitPunchRequest{
		UserID:    "user-1",
		Images:    []string{testImage()},
		IsCheckIn: true,
	})

	var subErr *attendance.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, http.StatusBadRequest, subErr.StatusCode)
	assert.Equal(t, "You are outside the allowed area", subErr.Message)
}

func TestClient_SubmitPunch_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(srv.URL, "")
	_, err := client.SubmitPunch(context.Background(), attendance.SubmitPunchRequest{
		UserID:    "user-1",
		Images:    []string{testImage()},
		IsCheckIn: true,
	})

	var subErr *attendance.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Zero(t, subErr.StatusCode)

	// No server message exists on a transport failure; the error text
	// stays out of Message so the orchestrator's fallback applies.
	assert.Empty(t, subErr.Message)
	assert.Error(t, subErr.Unwrap())
}

func TestClient_SubmitPunch_RejectsInvalidRequest(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.SubmitPunch(context.Background(), attendance.SubmitPunchRequest{
		UserID: "user-1",
	})

	assert.Error(t, err)
	assert.Zero(t, calls)
}

func TestClient_FetchDay_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/attendance", r.URL.Path)
		assert.Equal(t, "site-1", r.URL.Query().Get("site_id"))
		assert.Equal(t, "user-1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "2026-08-31", r.URL.Query().Get("date"))

		w.Write([]byte(`{"data":[{"date":"2026-08-31","status":"present","production_hours":"1h 30m"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	record, err := client.FetchDay(context.Background(), "site-1", "user-1", "2026-08-31")

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "present", *record.Status)
	assert.Equal(t, "1h 30m", *record.ProductionHours)
}

func TestClient_FetchDay_EmptyDataMeansNoRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	record, err := client.FetchDay(context.Background(), "site-1", "user-1", "2026-08-31")

	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestClient_FetchDay_BareRecordTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"date":"2026-08-31","last_login_status":"checked_in"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	record, err := client.FetchDay(context.Background(), "site-1", "user-1", "2026-08-31")

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "checked_in", *record.LastLoginStatus)
}
