package userauth

import "net/http"

// Request is the view of an incoming request the strategies need. The core
// never touches raw HTTP.
type Request interface {
	Header(name string) (string, bool)
	Cookie(name string) (string, bool)
}

// FromHTTP adapts r. A nil r yields a Request with no headers or cookies.
func FromHTTP(r *http.Request) Request {
	return httpRequest{r: r}
}

type httpRequest struct {
	r *http.Request
}

func (h httpRequest) Header(name string) (string, bool) {
	if h.r == nil {
		return "", false
	}
	values := h.r.Header.Values(name)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (h httpRequest) Cookie(name string) (string, bool) {
	if h.r == nil || name == "" {
		return "", false
	}
	c, err := h.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}
