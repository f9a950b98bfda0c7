package coordinator

import (
	"regexp"
	"sync"
)

// patternCache memoizes compiled include/exclude regexes (§4.1(d)) so that
// repeated admit calls against the same configuration don't recompile on
// every call. Regexes come from operator-supplied configuration, not a
// fixed set, so compilation happens lazily.
var patternCache sync.Map // map[string]*regexp.Regexp

// regexpMatch compiles (or reuses) pattern and reports whether s matches.
// An invalid pattern never matches rather than panicking a request handler.
func regexpMatch(pattern, s string) (bool, error) {
	if cached, ok := patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp).MatchString(s), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	patternCache.Store(pattern, re)
	return re.MatchString(s), nil
}
