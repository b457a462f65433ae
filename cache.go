package statica

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxAge is the freshness window advertised when no policy is configured.
const DefaultMaxAge = 10 * time.Second

// CachePolicy controls the validator headers emitted for every file response.
type CachePolicy struct {
	MaxAge time.Duration
	Mode   ProtocolMode
}

// CacheResult is the outcome of EvaluateCache.
type CacheResult struct {
	Hit       bool
	Validator Validator
}

// ComputeValidator derives the cache validators from metadata.
// The entity tag is "<change time as epoch millis>-<size>" where the change time
// is truncated to whole seconds, the resolution of Last-Modified.
func ComputeValidator(meta ResourceMetadata) Validator {
	changed := meta.ChangeTime.UTC().Truncate(time.Second)

	return Validator{
		ETag:         strconv.FormatInt(changed.UnixMilli(), 10) + "-" + strconv.FormatInt(meta.Size, 10),
		LastModified: changed.Format(http.TimeFormat),
	}
}

// EvaluateCache sets Cache-Control, Etag and Last-Modified on w and reports
// whether the request validators in r allow a 304 Not Modified.
//
// The headers are set on a miss too; callers keep them for the full response.
func EvaluateCache(w, r http.Header, meta ResourceMetadata, policy CachePolicy) CacheResult {
	v := ComputeValidator(meta)

	maxAge := policy.MaxAge
	if maxAge < 0 {
		maxAge = 0
	}

	etag := v.ETag
	if policy.Mode == ModeStrict {
		etag = `"` + etag + `"`
	}

	w.Set("Cache-Control", "max-age="+strconv.FormatInt(int64(maxAge/time.Second), 10))
	w.Set("Etag", etag)
	w.Set("Last-Modified", v.LastModified)

	var hit bool
	switch policy.Mode {
	case ModeStrict:
		hit = strictNotModified(r, v, meta)
	default:
		hit = r.Get("If-None-Match") == v.ETag && r.Get("If-Modified-Since") == v.LastModified
	}

	return CacheResult{Hit: hit, Validator: v}
}

// strictNotModified follows RFC 9110 13.2.2: If-None-Match wins when present.
func strictNotModified(r http.Header, v Validator, meta ResourceMetadata) bool {
	if inm := r.Get("If-None-Match"); inm != "" {
		return etagListMatches(inm, v.ETag)
	}

	ims := r.Get("If-Modified-Since")
	if ims == "" {
		return false
	}

	since, err := http.ParseTime(ims)
	if err != nil {
		return false
	}

	return !meta.ChangeTime.Truncate(time.Second).After(since)
}

// etagListMatches applies weak comparison of each listed tag against etag.
func etagListMatches(list, etag string) bool {
	for _, candidate := range strings.Split(list, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		candidate = strings.TrimPrefix(candidate, "W/")
		if strings.Trim(candidate, `"`) == etag {
			return true
		}
	}
	return false
}
