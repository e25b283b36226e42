package web

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Kind is the conversion and matching type of a path parameter.
type Kind int

const (
	// KindString matches one or more non-slash characters. Default.
	KindString Kind = iota
	// KindInt matches one or more digits and converts to int64.
	KindInt
	// KindFloat matches digits with an optional fractional part and
	// converts to float64.
	KindFloat
	// KindUUID matches the canonical 8-4-4-4-12 hyphenated hex form
	// (RFC 4122) and converts to uuid.UUID.
	KindUUID
	// KindMultiSegment matches the remainder of the path, slashes
	// included, possibly empty. Written as "multipath" in templates.
	KindMultiSegment
)

// kindNames maps template kind names to their Kind.
var kindNames = map[string]Kind{
	"str":       KindString,
	"int":       KindInt,
	"float":     KindFloat,
	"uuid":      KindUUID,
	"multipath": KindMultiSegment,
}

// kindPatterns maps each Kind to its capture sub-pattern.
var kindPatterns = map[Kind]string{
	KindString:       `[^/]+`,
	KindInt:          `[0-9]+`,
	KindFloat:        `[0-9]+(?:\.[0-9]+)?`,
	KindUUID:         `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`,
	KindMultiSegment: `.*`,
}

// String returns the template name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "str"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindUUID:
		return "uuid"
	case KindMultiSegment:
		return "multipath"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParamSpec describes a single named parameter in a path template.
type ParamSpec struct {
	Name string
	Kind Kind
}

// Pattern is a compiled path template: an anchored regexp matcher plus
// ordered parameter metadata and precomputed matching hints.
type Pattern struct {
	template string
	regexp   *regexp.Regexp
	params   []ParamSpec
	segments int
	hasTail  bool
}

// CompilePattern parses a path template into a Pattern.
//
// Templates contain literal characters and parameter tokens written as
// {name} or {name:kind} with kind one of str, int, float, uuid, multipath.
// Literal characters are matched verbatim. Glob wildcards are not
// supported; a multipath parameter captures trailing segments instead.
func CompilePattern(template string) (*Pattern, error) {
	if strings.Contains(template, "*") {
		return nil, fmt.Errorf("web: wildcard patterns (*, **) are not supported in %q, use a {name:multipath} parameter instead", template)
	}

	var (
		pattern strings.Builder
		params  []ParamSpec
		seen    = make(map[string]bool)
		hasTail bool
	)

	pattern.WriteByte('^')

	for i := 0; i < len(template); {
		if template[i] != '{' {
			next := strings.IndexByte(template[i:], '{')
			if next == -1 {
				pattern.WriteString(regexp.QuoteMeta(template[i:]))
				break
			}
			pattern.WriteString(regexp.QuoteMeta(template[i : i+next]))
			i += next
			continue
		}

		end := strings.IndexByte(template[i:], '}')
		if end == -1 {
			return nil, fmt.Errorf("web: unclosed parameter at position %d in %q", i, template)
		}
		end += i

		name, kindName, typed := strings.Cut(template[i+1:end], ":")
		if name == "" {
			return nil, fmt.Errorf("web: missing parameter name in %q", template)
		}

		kind := KindString
		if typed {
			k, ok := kindNames[kindName]
			if !ok {
				return nil, fmt.Errorf("web: unsupported parameter kind %q in %q", kindName, template)
			}
			kind = k
		}

		if seen[name] {
			return nil, fmt.Errorf("web: duplicated parameter %q in %q", name, template)
		}
		seen[name] = true

		fmt.Fprintf(&pattern, "(%s)", kindPatterns[kind])
		params = append(params, ParamSpec{Name: name, Kind: kind})
		if kind == KindMultiSegment {
			hasTail = true
		}

		i = end + 1
	}

	pattern.WriteByte('$')

	re, err := compileRegexp(pattern.String())
	if err != nil {
		return nil, fmt.Errorf("web: invalid pattern compiled from %q: %w", template, err)
	}

	return &Pattern{
		template: template,
		regexp:   re,
		params:   params,
		segments: countSegments(template),
		hasTail:  hasTail,
	}, nil
}

// Template returns the original template string.
func (p *Pattern) Template() string { return p.template }

// Params returns the ordered parameter specs of the pattern.
// The returned slice must not be modified.
func (p *Pattern) Params() []ParamSpec { return p.params }

// SegmentCount returns the precomputed number of path segments in the
// template. The root template "/" counts as one segment.
func (p *Pattern) SegmentCount() int { return p.segments }

// HasTail reports whether the pattern contains a multipath parameter,
// which may consume more segments than the template shows.
func (p *Pattern) HasTail() bool { return p.hasTail }

// captures runs the full regexp match against path and returns the
// captured groups in parameter order, or nil if the path does not match.
func (p *Pattern) captures(path string) []string {
	m := p.regexp.FindStringSubmatch(path)
	if m == nil {
		return nil
	}
	return m[1:]
}

// convert turns captured groups into typed parameter values. A conversion
// failure is reported as an error so the caller can treat the route as
// not matching.
func (p *Pattern) convert(captures []string) (Params, error) {
	params := make(Params, len(p.params))
	for i, spec := range p.params {
		v, err := convertParam(spec.Kind, captures[i])
		if err != nil {
			return nil, fmt.Errorf("web: parameter %q: %w", spec.Name, err)
		}
		params[spec.Name] = v
	}
	return params, nil
}

// countSegments counts the '/'-delimited segments of a path. The root
// path counts as one segment, and a trailing slash counts the empty
// segment after it.
func countSegments(path string) int {
	if path == "" || path == "/" {
		return 1
	}

	var clean string
	if strings.HasSuffix(path, "/") {
		clean = strings.TrimLeft(path, "/")
	} else {
		clean = strings.Trim(path, "/")
	}
	if clean == "" {
		return 1
	}
	return strings.Count(clean, "/") + 1
}

// normalizePath strips trailing slashes, keeping the root path intact.
func normalizePath(path string) string {
	if trimmed := strings.TrimRight(path, "/"); trimmed != "" {
		return trimmed
	}
	return "/"
}

// joinPath prepends prefix to path, normalizing the separator between
// them. An empty prefix leaves the path unchanged.
func joinPath(prefix, path string) string {
	if prefix == "" {
		return path
	}
	prefix = strings.TrimRight(prefix, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return prefix + path
}

// compiledExprs caches the regexps built from pattern expressions.
// Distinct expressions are bounded by the registered routes, so the cache
// stops growing once setup is done.
var compiledExprs sync.Map

func compileRegexp(expr string) (*regexp.Regexp, error) {
	if cached, ok := compiledExprs.Load(expr); ok {
		return cached.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	stored, _ := compiledExprs.LoadOrStore(expr, re)
	return stored.(*regexp.Regexp), nil
}
