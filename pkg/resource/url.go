package resource

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// URL is a parsed resource locator. For data URLs Path holds everything after
// "data:".
type URL struct {
	Scheme string
	Host   string
	Port   int
	Path   string
}

var defaultPorts = map[string]int{
	"http":  80,
	"https": 443,
}

var ErrMalformedURL = errors.New("malformed URL")

// ParseURL splits s into scheme, host, port and path. http and https URLs
// get their default port unless one is given; the path defaults to "/".
func ParseURL(s string) (*URL, error) {
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		return &URL{Scheme: "data", Path: rest}, nil
	}
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok || scheme == "" {
		return nil, fmt.Errorf("%w: %q has no scheme", ErrMalformedURL, s)
	}
	scheme = strings.ToLower(scheme)
	if !strings.Contains(rest, "/") {
		rest += "/"
	}
	host, path, _ := strings.Cut(rest, "/")
	u := &URL{
		Scheme: scheme,
		Host:   host,
		Port:   defaultPorts[scheme],
		Path:   "/" + path,
	}
	if h, port, ok := strings.Cut(host, ":"); ok {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("%w: bad port %q", ErrMalformedURL, port)
		}
		u.Host, u.Port = h, n
	}
	return u, nil
}

// Resolve interprets ref relative to u. References containing "://" are
// absolute, "//host/path" keeps the scheme, "/path" keeps scheme and host,
// and anything else is taken relative to the directory of u's path with each
// leading "../" climbing one level.
func (u *URL) Resolve(ref string) (*URL, error) {
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "data:") {
		return ParseURL(ref)
	}
	if u.Scheme == "data" {
		return nil, fmt.Errorf("%w: cannot resolve %q against a data URL", ErrMalformedURL, ref)
	}
	if !strings.HasPrefix(ref, "/") {
		dir, _ := cutLast(u.Path, "/")
		for strings.HasPrefix(ref, "../") {
			ref = strings.TrimPrefix(ref, "../")
			if strings.Contains(dir, "/") {
				dir, _ = cutLast(dir, "/")
			}
		}
		ref = dir + "/" + ref
	}
	if strings.HasPrefix(ref, "//") {
		return ParseURL(u.Scheme + ":" + ref)
	}
	return &URL{Scheme: u.Scheme, Host: u.Host, Port: u.Port, Path: ref}, nil
}

// String omits the port when it is the scheme's default.
func (u *URL) String() string {
	if u.Scheme == "data" {
		return "data:" + u.Path
	}
	host := u.Host
	if u.Port != 0 && u.Port != defaultPorts[u.Scheme] {
		host += ":" + strconv.Itoa(u.Port)
	}
	return u.Scheme + "://" + host + u.Path
}

func cutLast(s, sep string) (before, after string) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(sep):]
}
