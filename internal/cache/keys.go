package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

const (
	maxKeyLength = 200

	explanationPrefix = "explanation"
	documentPrefix    = "document"
	generalScope      = "general"
)

// BuildKey joins prefix, positional args and sorted named args with ':'.
// Keys longer than 200 characters are replaced by prefix:hash:<sha256>.
func BuildKey(prefix string, args []string, kwargs map[string]string) string {
	parts := make([]string, 0, 1+len(args)+2*len(kwargs))
	parts = append(parts, prefix)
	parts = append(parts, args...)

	names := make([]string, 0, len(kwargs))
	for name := range kwargs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, name, kwargs[name])
	}

	key := strings.Join(parts, ":")
	if len(key) <= maxKeyLength {
		return key
	}

	sum := sha256.Sum256([]byte(key))
	return prefix + ":hash:" + hex.EncodeToString(sum[:])
}

// ExplanationKey addresses a memoized query answer. Answers scoped to a
// document live under explanation:document:<id> so the prefix survives
// long-key hashing and can be cleared with the document.
func ExplanationKey(question, level, documentID string) string {
	prefix := explanationPrefix
	if documentID != "" {
		prefix = explanationPrefix + ":" + documentPrefix + ":" + documentID
	}
	return BuildKey(prefix, []string{question, level, ContextHash(question, documentID)}, nil)
}

// DocumentKey addresses per-document records such as the processing status.
func DocumentKey(documentID, operation string) string {
	return BuildKey(documentPrefix, []string{documentID, operation}, nil)
}

// ContextHash distinguishes the same question asked against different
// document scopes.
func ContextHash(question, documentID string) string {
	scope := documentID
	if scope == "" {
		scope = generalScope
	}

	sum := sha256.Sum256([]byte(question + "_" + scope))
	return hex.EncodeToString(sum[:])[:16]
}

// DocumentPatterns match the per-document records and the scoped answers of
// one document. The id is quoted so it only ever matches itself.
func DocumentPatterns(documentID string) []string {
	id := glob.QuoteMeta(documentID)
	return []string{
		documentPrefix + ":" + id + ":*",
		explanationPrefix + ":" + documentPrefix + ":" + id + ":*",
	}
}
