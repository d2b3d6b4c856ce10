package gateway

import (
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/pratik-mahalle/linkboost/internal/pkg/errors"
)

// ActionAllowList names the auth actions the gateway will forward.
type ActionAllowList map[string]struct{}

// AuthActions is the allow-list for /api/v1/auth?action=
var AuthActions = NewActionAllowList("register", "login")

// NewActionAllowList builds an allow-list from action names
func NewActionAllowList(actions ...string) ActionAllowList {
	l := make(ActionAllowList, len(actions))
	for _, a := range actions {
		l[a] = struct{}{}
	}
	return l
}

// Validate returns a 400 error unless action is allowed
func (l ActionAllowList) Validate(action string) *errors.AppError {
	if _, ok := l[action]; ok {
		return nil
	}
	allowed := l.Names()
	if action == "" {
		return errors.ValidationError("Missing action parameter", map[string]interface{}{"allowed": allowed})
	}
	return errors.ValidationError(
		fmt.Sprintf("Invalid action. Must be one of: %s", strings.Join(allowed, ", ")),
		map[string]interface{}{"allowed": allowed},
	)
}

// Names returns the allowed actions in sorted order
func (l ActionAllowList) Names() []string {
	out := make([]string, 0, len(l))
	for a := range l {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// ActionTarget resolves ?action= into an upstream target at <prefix>/<action>.
// The action parameter itself is not forwarded.
func (l ActionAllowList) ActionTarget(name, baseURL, prefix string, query url.Values) (Target, *errors.AppError) {
	action := query.Get("action")
	if appErr := l.Validate(action); appErr != nil {
		return Target{}, appErr
	}

	rest := url.Values{}
	for k, v := range query {
		if k == "action" {
			continue
		}
		rest[k] = v
	}
	return Target{
		Name:    name,
		BaseURL: baseURL,
		Path:    strings.TrimRight(prefix, "/") + "/" + action,
		Query:   rest,
	}, nil
}

// PrefixTarget places rest under prefix. The joined path is cleaned and must
// still sit under prefix; one that climbs out with ".." is a 400.
func PrefixTarget(name, baseURL, prefix, rest string, query url.Values) (Target, *errors.AppError) {
	prefix = "/" + strings.Trim(prefix, "/")
	joined := path.Clean(prefix + "/" + rest)
	if joined != prefix && !strings.HasPrefix(joined, prefix+"/") {
		return Target{}, errors.ValidationError("Invalid path", map[string]interface{}{"prefix": prefix})
	}
	return Target{
		Name:    name,
		BaseURL: baseURL,
		Path:    joined,
		Query:   query,
	}, nil
}
