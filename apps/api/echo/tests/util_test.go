package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	echoapi "github.com/campusflow/campusflow/apps/api/echo"
	"github.com/campusflow/campusflow/core/user"
)

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := echoapi.GetUserClaims(usr)
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// successBody marshals the success envelope every endpoint answers with.
func successBody(t *testing.T, message string, data interface{}) []byte {
	t.Helper()
	return marchallObj(t, echoapi.Response{Success: true, Message: message, Data: data})
}

// failureBody marshals the error envelope.
func failureBody(t *testing.T, message string, errDetail ...interface{}) []byte {
	t.Helper()
	resp := echoapi.Response{Success: false, Message: message}
	if len(errDetail) > 0 {
		resp.Error = errDetail[0]
	}
	return marchallObj(t, resp)
}

var (
	errMissingTokenBody = []byte(`{"success":false,"message":"user not authenticated"}`)
	errForbiddenBody    = []byte(`{"success":false,"message":"permission denied"}`)
	errNotFoundBody     = []byte(`{"success":false,"message":"not found"}`)
)

func jsonBytesEqual(t *testing.T, b1, b2 []byte) bool {
	t.Helper()
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		t.Fatalf("jsonBytesEqual() failed: %v", err)
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		t.Fatalf("jsonBytesEqual() failed: %v", err)
	}
	return reflect.DeepEqual(j1, j2)
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("%s: code = %d; want %d; body = %s", tt.name, rec.Code, wantCode, rec.Body.String())
		return
	}
	if tt.wantData == nil {
		return
	}
	if !jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData) {
		t.Errorf("%s: body = %s; want %s", tt.name, rec.Body.String(), tt.wantData)
	}
}

// do serves tt against the app and checks the response.
func do(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()

	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
	return rec
}

// decodeData unmarshals the envelope's data field into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	var resp struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decodeData() failed: %v", err)
	}
	if out == nil {
		return
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		t.Fatalf("decodeData() failed: %v; body = %s", err, rec.Body.String())
	}
}
