package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuraltc/capsule-service/internal/auth"
	"github.com/neuraltc/capsule-service/internal/model"
	"github.com/neuraltc/capsule-service/internal/store/sqlite"
	"github.com/neuraltc/capsule-service/internal/uploads"
)

// fixture boots the full router over a throwaway sqlite database.
type fixture struct {
	srv *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, db, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "api_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	files, err := uploads.New(t.TempDir())
	require.NoError(t, err)

	authn, err := auth.NewAuthenticator("router-test-secret", time.Hour)
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(st, authn, files, nil))
	t.Cleanup(srv.Close)
	return &fixture{srv: srv}
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, data
}

func (f *fixture) register(t *testing.T, name, email string) string {
	t.Helper()
	resp, data := f.do(t, "POST", "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "correcthorse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (f *fixture) createPatient(t *testing.T, token, name string) string {
	t.Helper()
	resp, data := f.do(t, "POST", "/api/patients", token, map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	var p model.Patient
	require.NoError(t, json.Unmarshal(data, &p))
	return p.PatientID
}

func (f *fixture) createTextMemory(t *testing.T, token, patientID, title string) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("patient", patientID))
	require.NoError(t, mw.WriteField("title", title))
	require.NoError(t, mw.WriteField("type", "text"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest("POST", f.srv.URL+"/api/memories", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	var m model.Memory
	require.NoError(t, json.Unmarshal(data, &m))
	return m.MemoryID
}

func TestAuthRequiredOnProtectedRoutes(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, "GET", "/api/patients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.do(t, "GET", "/api/patients", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthIsPublic(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.do(t, "GET", "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterLoginFlow(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ana", "ana@example.com")

	// Duplicate email conflicts.
	resp, _ := f.do(t, "POST", "/api/auth/register", "", map[string]string{
		"name": "Ana Again", "email": "ana@example.com", "password": "correcthorse",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, data := f.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "correcthorse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Token string `json:"token"`
		Name  string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "Ana", out.Name)

	resp, _ = f.do(t, "POST", "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPatientCRUDAndOwnership(t *testing.T) {
	f := newFixture(t)
	tokA := f.register(t, "Ana", "ana@example.com")
	tokB := f.register(t, "Ben", "ben@example.com")

	patID := f.createPatient(t, tokA, "Rosa")

	resp, data := f.do(t, "GET", "/api/patients/"+patID, tokA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p model.Patient
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, "Rosa", p.Name)

	// Another caregiver cannot see the patient, or even learn it exists.
	resp, _ = f.do(t, "GET", "/api/patients/"+patID, tokB, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = f.do(t, "DELETE", "/api/patients/"+patID, tokB, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, data = f.do(t, "GET", "/api/patients", tokA, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []*model.Patient
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Len(t, list, 1)

	resp, _ = f.do(t, "DELETE", "/api/patients/"+patID, tokA, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(t, "GET", "/api/patients/"+patID, tokA, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMemoryUploadRoundTrip(t *testing.T) {
	f := newFixture(t)
	tok := f.register(t, "Ana", "ana@example.com")
	patID := f.createPatient(t, tok, "Rosa")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("patient", patID))
	require.NoError(t, mw.WriteField("title", "Beach day"))
	require.NoError(t, mw.WriteField("type", "image"))
	require.NoError(t, mw.WriteField("location", "Baltic coast"))
	require.NoError(t, mw.WriteField("peopleInvolved", `["Mom","Dad"]`))
	fw, err := mw.CreateFormFile("file", "beach.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest("POST", f.srv.URL+"/api/memories", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	var m model.Memory
	require.NoError(t, json.Unmarshal(data, &m))
	require.NotNil(t, m.FileURL)
	assert.Equal(t, []string{"Mom", "Dad"}, m.PeopleInvolved)

	// The stored file is served back unauthenticated.
	fileResp, err := http.Get(f.srv.URL + *m.FileURL)
	require.NoError(t, err)
	body, err := io.ReadAll(fileResp.Body)
	require.NoError(t, err)
	_ = fileResp.Body.Close()
	assert.Equal(t, http.StatusOK, fileResp.StatusCode)
	assert.Equal(t, "jpeg-bytes", string(body))
}

func TestCapsuleGenerateFlow(t *testing.T) {
	f := newFixture(t)
	tok := f.register(t, "Ana", "ana@example.com")
	patID := f.createPatient(t, tok, "Rosa")
	mem1 := f.createTextMemory(t, tok, patID, "Garden afternoon")
	mem2 := f.createTextMemory(t, tok, patID, "Wedding waltz")

	resp, data := f.do(t, "POST", "/api/capsules/generate", tok, map[string]interface{}{
		"patientId": patID,
		"title":     "Golden Years",
		"memoryIds": []string{mem2, mem1},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	var c model.Capsule
	require.NoError(t, json.Unmarshal(data, &c))
	assert.Equal(t, "neural", c.Theme)
	assert.Equal(t, []string{mem2, mem1}, c.MemoryIDs)
	require.Len(t, c.Memories, 2)
	assert.Equal(t, "Wedding waltz", c.Memories[0].Title)
	assert.Contains(t, c.Narrative, `"Golden Years"`)
	assert.Contains(t, c.Narrative, "2 distinct moments")

	// Empty selection is a validation error.
	resp, _ = f.do(t, "POST", "/api/capsules/generate", tok, map[string]interface{}{
		"patientId": patID,
		"title":     "Empty",
		"memoryIds": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data = f.do(t, "GET", "/api/capsules/patient/"+patID, tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []*model.Capsule
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Len(t, list, 1)

	resp, _ = f.do(t, "GET", "/api/capsules/"+c.CapsuleID, tok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, "DELETE", "/api/capsules/"+c.CapsuleID, tok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(t, "GET", "/api/capsules/"+c.CapsuleID, tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCapsuleOwnershipIsEnforcedEndToEnd(t *testing.T) {
	f := newFixture(t)
	tokA := f.register(t, "Ana", "ana@example.com")
	tokB := f.register(t, "Ben", "ben@example.com")
	patID := f.createPatient(t, tokA, "Rosa")
	memID := f.createTextMemory(t, tokA, patID, "Garden")

	resp, _ := f.do(t, "POST", "/api/capsules/generate", tokB, map[string]interface{}{
		"patientId": patID,
		"title":     "Stolen",
		"memoryIds": []string{memID},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type stubGenerator struct {
	reply string
	err   error
}

func (s stubGenerator) Generate(context.Context, string) (string, error) { return s.reply, s.err }

func TestAssistChat(t *testing.T) {
	st, db, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "assist_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	files, err := uploads.New(t.TempDir())
	require.NoError(t, err)
	authn, err := auth.NewAuthenticator("router-test-secret", time.Hour)
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(st, authn, files, stubGenerator{reply: "hello there"}))
	t.Cleanup(srv.Close)
	f := &fixture{srv: srv}
	tok := f.register(t, "Ana", "ana@example.com")

	resp, data := f.do(t, "POST", "/api/assist/chat", tok, map[string]string{"prompt": "hi"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]string
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "hello there", out["response"])

	resp, _ = f.do(t, "POST", "/api/assist/chat", tok, map[string]string{"prompt": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAssistUpstreamFailureIsBadGateway(t *testing.T) {
	st, db, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "assist_err.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	files, err := uploads.New(t.TempDir())
	require.NoError(t, err)
	authn, err := auth.NewAuthenticator("router-test-secret", time.Hour)
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(st, authn, files, stubGenerator{err: fmt.Errorf("down")}))
	t.Cleanup(srv.Close)
	f := &fixture{srv: srv}
	tok := f.register(t, "Ana", "ana@example.com")

	resp, _ := f.do(t, "POST", "/api/assist/chat", tok, map[string]string{"prompt": "hi"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
