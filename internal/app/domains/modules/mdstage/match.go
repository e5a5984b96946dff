package mdstage

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"

	"fzscan/internal/app/domains/entity/etstage"
)

// Normalize 工序名归一化：全角转半角、大小写折叠、去空白
func Normalize(name string) string {
	folded := cases.Fold().String(width.Fold.String(name))
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, folded)
}

// synonymEntry 归一化后的同义词
type synonymEntry struct {
	word  string
	stage etstage.Stage
}

var (
	exactIndex   = buildExactIndex()
	synonymIndex = buildSynonymIndex()
)

func buildExactIndex() map[string]etstage.Stage {
	idx := make(map[string]etstage.Stage)
	for _, st := range etstage.Ordered {
		idx[Normalize(string(st))] = st
		idx[Normalize(st.Label())] = st
		for _, syn := range etstage.Synonyms[st] {
			key := Normalize(syn)
			if _, dup := idx[key]; !dup {
				idx[key] = st
			}
		}
	}
	return idx
}

func buildSynonymIndex() []synonymEntry {
	var entries []synonymEntry
	for _, st := range etstage.Ordered {
		for _, syn := range etstage.Synonyms[st] {
			entries = append(entries, synonymEntry{word: Normalize(syn), stage: st})
		}
	}
	return entries
}

// MatchFixed 名称等于固定节点名或其同义词
func MatchFixed(name string) (etstage.Stage, bool) {
	st, ok := exactIndex[Normalize(name)]
	return st, ok
}

// MatchContains 名称包含某个同义词，多个命中时取最长的
func MatchContains(name string) (etstage.Stage, bool) {
	n := Normalize(name)
	if n == "" {
		return "", false
	}
	var best synonymEntry
	for _, e := range synonymIndex {
		if len(e.word) > len(best.word) && strings.Contains(n, e.word) {
			best = e
		}
	}
	return best.stage, best.word != ""
}

// ParentOf 父节点名映射到固定节点：先精确后包含
func ParentOf(name string) (etstage.Stage, bool) {
	if st, ok := MatchFixed(name); ok {
		return st, true
	}
	return MatchContains(name)
}

// StagesMatch 两个工序名是否指同一工序
func StagesMatch(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	sa, okA := MatchFixed(na)
	sb, okB := MatchFixed(nb)
	return okA && okB && sa == sb
}

// containsAny 归一化名称是否包含任一词
func containsAny(name string, words []string) bool {
	n := Normalize(name)
	for _, w := range words {
		if strings.Contains(n, Normalize(w)) {
			return true
		}
	}
	return false
}

// IsPackaging 包装类工序
func IsPackaging(name string) bool {
	return containsAny(name, etstage.PackagingSynonyms)
}

// IsQuality 质检类工序
func IsQuality(name string) bool {
	return containsAny(name, etstage.QualitySynonyms)
}
