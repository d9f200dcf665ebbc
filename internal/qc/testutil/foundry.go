package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
)

// Upload is one file received by the fake upload endpoint.
type Upload struct {
	TrialID    string
	Category   string
	UploadedBy string
	Remarks    string
	FileName   string
	Data       []byte
}

// FakeFoundry is an in-memory foundry API on an httptest server.
type FakeFoundry struct {
	Server *httptest.Server

	mu          sync.Mutex
	calls       []string
	bodies      map[string][]map[string]any
	Parts       []foundryapi.MasterPart
	Progress    []foundryapi.Progress
	Records     map[string]json.RawMessage // "path?trial_id"
	Fail        map[string]int             // "METHOD path" -> status
	Uploads     []Upload
	NextTrialID string
	PublicIP    string
}

// NewFakeFoundry starts a fake closed at test end.
func NewFakeFoundry(t *testing.T) *FakeFoundry {
	t.Helper()
	f := &FakeFoundry{
		bodies:      map[string][]map[string]any{},
		Records:     map[string]json.RawMessage{},
		Fail:        map[string]int{},
		NextTrialID: "TR-1001",
		PublicIP:    "203.0.113.9",
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// Client returns an API client pointed at the fake.
func (f *FakeFoundry) Client() *foundryapi.Client {
	return foundryapi.NewClient(f.Server.URL, 5*time.Second, foundryapi.WithPublicIPURL(f.Server.URL+"/ip"))
}

// Count reports how often "METHOD path" was called.
func (f *FakeFoundry) Count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method+" "+path {
			n++
		}
	}
	return n
}

// Calls lists every call except public ip lookups.
func (f *FakeFoundry) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if c != "GET /ip" {
			out = append(out, c)
		}
	}
	return out
}

// LastBody returns the last JSON body sent to "METHOD path".
func (f *FakeFoundry) LastBody(method, path string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.bodies[method+" "+path]
	if len(b) == 0 {
		return nil
	}
	return b[len(b)-1]
}

// SetRecord stores a saved record for a trial.
func (f *FakeFoundry) SetRecord(path, trialID string, record any) {
	raw, _ := json.Marshal(record)
	f.mu.Lock()
	f.Records[path+"?"+trialID] = raw
	f.mu.Unlock()
}

func (f *FakeFoundry) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.calls = append(f.calls, key)
	status, failing := f.Fail[key]
	f.mu.Unlock()

	if failing {
		writeEnvelope(w, status, false, "backend unavailable", nil)
		return
	}

	switch {
	case r.URL.Path == "/ip":
		json.NewEncoder(w).Encode(map[string]string{"ip": f.PublicIP})
	case key == "GET /api/master-parts":
		writeEnvelope(w, http.StatusOK, true, "", f.Parts)
	case key == "GET /api/department-progress":
		writeEnvelope(w, http.StatusOK, true, "", f.Progress)
	case key == "POST /api/documents/upload":
		f.upload(w, r)
	case r.Method == http.MethodGet:
		f.mu.Lock()
		rec := f.Records[r.URL.Path+"?"+r.URL.Query().Get("trial_id")]
		f.mu.Unlock()
		writeEnvelope(w, http.StatusOK, true, "", rec)
	default:
		body := map[string]any{}
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		f.mu.Lock()
		f.bodies[key] = append(f.bodies[key], body)
		f.mu.Unlock()

		if strings.HasPrefix(r.URL.Path, "/api/department-progress") {
			writeEnvelope(w, http.StatusOK, true, "updated", nil)
			return
		}
		if body["trial_id"] == nil {
			body["trial_id"] = f.NextTrialID
		}
		f.SetRecord(r.URL.Path, fmt.Sprint(body["trial_id"]), body)
		writeEnvelope(w, http.StatusOK, true, "saved", body)
	}
}

func (f *FakeFoundry) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeEnvelope(w, http.StatusBadRequest, false, err.Error(), nil)
		return
	}
	var docs []foundryapi.UploadedDocument
	for _, fh := range r.MultipartForm.File["files"] {
		file, err := fh.Open()
		if err != nil {
			continue
		}
		data, _ := io.ReadAll(file)
		file.Close()
		f.mu.Lock()
		f.Uploads = append(f.Uploads, Upload{
			TrialID:    r.FormValue("trial_id"),
			Category:   r.FormValue("category"),
			UploadedBy: r.FormValue("uploaded_by"),
			Remarks:    r.FormValue("remarks"),
			FileName:   fh.Filename,
			Data:       data,
		})
		f.mu.Unlock()
		docs = append(docs, foundryapi.UploadedDocument{FileName: fh.Filename})
	}
	writeEnvelope(w, http.StatusOK, true, "", docs)
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, msg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	raw, _ := json.Marshal(data)
	json.NewEncoder(w).Encode(map[string]any{
		"success": success,
		"message": msg,
		"data":    json.RawMessage(raw),
	})
}
