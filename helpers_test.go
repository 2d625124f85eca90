package lungo

import (
	"net/http"
	"net/http/httptest"
)

func discardWriter() http.ResponseWriter {
	return httptest.NewRecorder()
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}
