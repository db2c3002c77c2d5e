package unit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Operation kinds a component definition may bind to.
const (
	KindHash            = "hash"
	KindValidate        = "validate"
	KindTransform       = "transform"
	KindProcess         = "process"
	KindAnalyze         = "analyze"
	KindExecuteAnalysis = "execute-analysis"
	KindDeploy          = "deploy"
	KindSynthesize      = "synthesize"
	KindEcho            = "echo"
)

// Validation predicate variants for the validate kind.
const (
	// PredicateObject accepts non-nil JSON objects only.
	PredicateObject = "object"
	// PredicatePresent accepts any non-nil value.
	PredicatePresent = "present"
)

// Kinds lists every supported operation kind.
func Kinds() []string {
	return []string{
		KindHash, KindValidate, KindTransform, KindProcess,
		KindAnalyze, KindExecuteAnalysis, KindDeploy, KindSynthesize, KindEcho,
	}
}

// CanonicalBytes returns the byte form of param used for digests and size
// accounting. Strings map to their raw UTF-8 bytes; every other value maps to
// its compact JSON encoding. It fails only for values that cannot be
// JSON-encoded.
func CanonicalBytes(param any) ([]byte, error) {
	switch v := param.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		enc, err := json.Marshal(param)
		if err != nil {
			return nil, fmt.Errorf("encode param: %w", err)
		}
		return enc, nil
	}
}

// DigestBytes returns the SHA-256 hex digest of b.
func DigestBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Digest returns the SHA-256 hex digest of param's canonical bytes.
func Digest(param any) (string, error) {
	b, err := CanonicalBytes(param)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return DigestBytes(b), nil
}

// Transform deep-clones param via a JSON round trip. The clone is
// structurally equal to but shares no references with the input. Values that
// cannot be JSON-encoded fail instead of silently dropping fields.
func Transform(param any) (any, error) {
	b, err := json.Marshal(param)
	if err != nil {
		return nil, fmt.Errorf("transform: encode param: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("transform: decode param: %w", err)
	}
	return out, nil
}

// Validate builds a validate operation for the given predicate variant.
// The result reports the verdict; validation never rejects the invocation
// itself.
func Validate(predicate string) (Operation, error) {
	var pred func(any) bool
	switch predicate {
	case PredicateObject, "":
		pred = func(param any) bool {
			if param == nil {
				return false
			}
			_, ok := param.(map[string]any)
			return ok
		}
	case PredicatePresent:
		pred = func(param any) bool { return param != nil }
	default:
		return nil, fmt.Errorf("unknown validate predicate: %s", predicate)
	}
	return func(param any) (any, error) {
		return map[string]any{"valid": pred(param)}, nil
	}, nil
}

// ForKind resolves an operation kind (and optional predicate, for validate)
// to an executable operation.
//
// The process/analyze/deploy/synthesize family returns fixed-shape results
// that ignore the parameter. That is the contract: these names carry no
// further behavior, and callers must not read meaning into them.
func ForKind(kind, predicate string) (Operation, error) {
	switch kind {
	case KindHash:
		return func(param any) (any, error) {
			digest, err := Digest(param)
			if err != nil {
				return nil, err
			}
			return map[string]any{"digest": digest}, nil
		}, nil
	case KindValidate:
		return Validate(predicate)
	case KindTransform:
		return Transform, nil
	case KindProcess:
		return fixed(map[string]any{"processed": true, "items": []any{}}), nil
	case KindAnalyze, KindExecuteAnalysis:
		return fixed(map[string]any{"findings": []any{}, "confidence": 0.95}), nil
	case KindDeploy:
		return fixed(map[string]any{"deployed": true, "results": []any{}}), nil
	case KindSynthesize:
		return fixed(map[string]any{"synthesized": true}), nil
	case KindEcho:
		return func(param any) (any, error) { return param, nil }, nil
	default:
		return nil, fmt.Errorf("unknown operation kind: %s", kind)
	}
}

func fixed(result map[string]any) Operation {
	return func(any) (any, error) {
		out := make(map[string]any, len(result))
		for k, v := range result {
			out[k] = v
		}
		return out, nil
	}
}
