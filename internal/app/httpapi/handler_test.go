package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/setorid/collector/internal/app"
)

const testPassword = "s3cret"

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	application, err := app.New(app.Stores{}, nil, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	return NewHandler(application, Config{
		AdminPassword: testPassword,
		TokenSecret:   testPassword,
	})
}

func marshal(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(data)
}

func do(t *testing.T, handler http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response %q: %v", resp.Body.String(), err)
	}
	return out
}

func TestAdminLogin(t *testing.T) {
	handler := newTestHandler(t)

	resp := do(t, handler, http.MethodPost, "/api/admin/login", marshal(t, map[string]string{"password": "wrong"}))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	body := decode(t, resp)
	if body["success"] != false || body["error"] != "Password salah" {
		t.Fatalf("unexpected body: %v", body)
	}

	resp = do(t, handler, http.MethodPost, "/api/admin/login", marshal(t, map[string]string{"password": testPassword}))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body = decode(t, resp)
	if body["success"] != true {
		t.Fatalf("expected success, got %v", body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("expected a token")
	}
	if len(strings.Split(token, ".")) != 3 {
		t.Fatalf("expected a JWT, got %q", token)
	}
}

func TestSubmissionLifecycle(t *testing.T) {
	handler := newTestHandler(t)

	// Validation failures, in policy order.
	resp := do(t, handler, http.MethodPost, "/api/submissions", marshal(t, map[string]string{"name": "", "email": "", "wallet": ""}))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if decode(t, resp)["error"] != "Semua field harus diisi" {
		t.Fatalf("unexpected validation message")
	}

	resp = do(t, handler, http.MethodPost, "/api/submissions", marshal(t, map[string]string{"name": "Ana", "email": "ana@yahoo.com", "wallet": "w1"}))
	if resp.Code != http.StatusBadRequest || decode(t, resp)["error"] != "Email harus @gmail.com" {
		t.Fatalf("expected gmail-domain rejection, got %d %s", resp.Code, resp.Body.String())
	}

	// First valid submission.
	resp = do(t, handler, http.MethodPost, "/api/submissions", marshal(t, map[string]string{"name": "Ana", "email": "ana@gmail.com", "wallet": "w1"}))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	body := decode(t, resp)
	if body["success"] != true || body["id"] != float64(1) || body["message"] != "Akun berhasil disetor!" {
		t.Fatalf("unexpected create response: %v", body)
	}

	// Duplicate under a case variation.
	resp = do(t, handler, http.MethodPost, "/api/submissions", marshal(t, map[string]string{"name": "ana", "email": "ANA@gmail.com", "wallet": "w2"}))
	if resp.Code != http.StatusBadRequest || decode(t, resp)["error"] != "Email ini sudah pernah disetor" {
		t.Fatalf("expected duplicate rejection, got %d %s", resp.Code, resp.Body.String())
	}

	// List shows one unpaid record.
	resp = do(t, handler, http.MethodGet, "/api/submissions", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var subs []map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &subs); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(subs) != 1 || subs[0]["paid"] != false {
		t.Fatalf("unexpected list: %v", subs)
	}

	// Toggle paid twice.
	resp = do(t, handler, http.MethodPatch, "/api/submissions/1/toggle-paid", nil)
	body = decode(t, resp)
	if resp.Code != http.StatusOK || body["paid"] != true || body["message"] != "Ditandai sebagai lunas" {
		t.Fatalf("unexpected toggle response: %d %v", resp.Code, body)
	}
	resp = do(t, handler, http.MethodPatch, "/api/submissions/1/toggle-paid", nil)
	body = decode(t, resp)
	if body["paid"] != false || body["message"] != "Ditandai belum bayar" {
		t.Fatalf("unexpected second toggle response: %v", body)
	}

	// Unknown and malformed ids.
	resp = do(t, handler, http.MethodPatch, "/api/submissions/99/toggle-paid", nil)
	if resp.Code != http.StatusNotFound || decode(t, resp)["error"] != "Submission tidak ditemukan" {
		t.Fatalf("expected 404, got %d %s", resp.Code, resp.Body.String())
	}
	resp = do(t, handler, http.MethodPatch, "/api/submissions/abc/toggle-paid", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for malformed id, got %d", resp.Code)
	}

	// Delete is idempotent.
	resp = do(t, handler, http.MethodDelete, "/api/submissions/99", nil)
	if resp.Code != http.StatusOK || decode(t, resp)["success"] != true {
		t.Fatalf("expected delete of unknown id to succeed, got %d", resp.Code)
	}
	resp = do(t, handler, http.MethodDelete, "/api/submissions/1", nil)
	if resp.Code != http.StatusOK || decode(t, resp)["message"] != "Submission berhasil dihapus" {
		t.Fatalf("unexpected delete response: %d %s", resp.Code, resp.Body.String())
	}

	// Ids are not reused after delete.
	resp = do(t, handler, http.MethodPost, "/api/submissions", marshal(t, map[string]string{"name": "Budi", "email": "budi@gmail.com", "wallet": "w3"}))
	if decode(t, resp)["id"] != float64(2) {
		t.Fatalf("expected id 2 after delete, got %s", resp.Body.String())
	}

	// Clear all resets the counter.
	resp = do(t, handler, http.MethodDelete, "/api/submissions", nil)
	if resp.Code != http.StatusOK || decode(t, resp)["message"] != "Semua data berhasil dihapus" {
		t.Fatalf("unexpected clear response: %d %s", resp.Code, resp.Body.String())
	}
	resp = do(t, handler, http.MethodPost, "/api/submissions", marshal(t, map[string]string{"name": "Cici", "email": "cici@gmail.com", "wallet": "w4"}))
	if decode(t, resp)["id"] != float64(1) {
		t.Fatalf("expected id 1 after clear, got %s", resp.Body.String())
	}
}

func TestStatsEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	for i := 1; i <= 5; i++ {
		resp := do(t, handler, http.MethodPost, "/api/submissions", marshal(t, map[string]string{
			"name":   fmt.Sprintf("user%d", i),
			"email":  fmt.Sprintf("user%d@gmail.com", i),
			"wallet": fmt.Sprintf("w%d", i),
		}))
		if resp.Code != http.StatusOK {
			t.Fatalf("seed %d: %d %s", i, resp.Code, resp.Body.String())
		}
	}
	for _, id := range []string{"1", "2"} {
		resp := do(t, handler, http.MethodPatch, "/api/submissions/"+id+"/toggle-paid", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("toggle %s: %d", id, resp.Code)
		}
	}

	resp := do(t, handler, http.MethodGet, "/api/stats", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	stats := decode(t, resp)
	if stats["totalAccounts"] != float64(5) {
		t.Fatalf("totalAccounts = %v, want 5", stats["totalAccounts"])
	}
	if stats["paidCount"] != float64(2) || stats["unpaidCount"] != float64(3) {
		t.Fatalf("paid/unpaid = %v/%v", stats["paidCount"], stats["unpaidCount"])
	}
	if stats["totalPayout"] != float64(8000) || stats["pendingPayout"] != float64(12000) {
		t.Fatalf("payouts = %v/%v", stats["totalPayout"], stats["pendingPayout"])
	}
	if stats["totalContributors"] != float64(5) {
		t.Fatalf("totalContributors = %v, want 5", stats["totalContributors"])
	}
}

func TestExportCSV(t *testing.T) {
	handler := newTestHandler(t)

	resp := do(t, handler, http.MethodPost, "/api/submissions", marshal(t, map[string]string{"name": "Ana", "email": "ana@gmail.com", "wallet": "w1"}))
	if resp.Code != http.StatusOK {
		t.Fatalf("seed: %d", resp.Code)
	}
	if resp := do(t, handler, http.MethodPatch, "/api/submissions/1/toggle-paid", nil); resp.Code != http.StatusOK {
		t.Fatalf("toggle: %d", resp.Code)
	}
	resp = do(t, handler, http.MethodPost, "/api/submissions", marshal(t, map[string]string{"name": `Budi "BJ", Jr.`, "email": "budi@gmail.com", "wallet": "w2"}))
	if resp.Code != http.StatusOK {
		t.Fatalf("seed: %d", resp.Code)
	}

	resp = do(t, handler, http.MethodGet, "/api/submissions/export", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "gmail_submissions_") {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	lines := strings.Split(strings.TrimRight(resp.Body.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != `"No","Nama","Email","E-Wallet","Status","Tanggal"` {
		t.Fatalf("unexpected header row %q", lines[0])
	}
	// Newest first; embedded quotes are doubled, the comma stays inside the
	// quoted cell.
	if !strings.HasPrefix(lines[1], `"1","Budi ""BJ"", Jr.","budi@gmail.com","w2","Belum Bayar",`) {
		t.Fatalf("unexpected data row %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], `"2","Ana","ana@gmail.com","w1","Lunas",`) {
		t.Fatalf("unexpected data row %q", lines[2])
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(t)

	resp := do(t, handler, http.MethodGet, "/healthz", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if decode(t, resp)["status"] != "healthy" {
		t.Fatalf("unexpected health body: %s", resp.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	resp := do(t, handler, http.MethodGet, "/metrics", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestHandler(t)

	resp := do(t, handler, http.MethodOptions, "/api/submissions", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on preflight, got %d", resp.Code)
	}
	if resp.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS headers")
	}
}
