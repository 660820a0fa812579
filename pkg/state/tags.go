package state

import (
	"regexp"
	"sort"
	"strings"
)

// TagKind identifies one of the control directives the model embeds in
// its narrative text.
type TagKind string

const (
	TagRoll       TagKind = "roll"
	TagHP         TagKind = "hp"
	TagXP         TagKind = "xp"
	TagGold       TagKind = "gold"
	TagItemAdd    TagKind = "item_add"
	TagItemRemove TagKind = "item_remove"
)

// Tag wire format, embedded in assistant text:
//
//	[ROLL:<dice>:<reason>]  [HP:<±int>]  [XP:<int>]
//	[GOLD:<±int>]  [ITEM:add:<name>]  [ITEM:remove:<name>]
var (
	rollTagRe       = regexp.MustCompile(`\[ROLL:([^:\]]+):([^\]]+)\]`)
	hpTagRe         = regexp.MustCompile(`\[HP:([+-]?\d+)\]`)
	xpTagRe         = regexp.MustCompile(`\[XP:(\d+)\]`)
	goldTagRe       = regexp.MustCompile(`\[GOLD:([+-]?\d+)\]`)
	itemAddTagRe    = regexp.MustCompile(`\[ITEM:add:([^\]]+)\]`)
	itemRemoveTagRe = regexp.MustCompile(`\[ITEM:remove:([^\]]+)\]`)

	stripTagRe = regexp.MustCompile(`\[(ROLL|HP|XP|GOLD|ITEM):[^\]]*\]`)
)

// Tag is one matched control directive. Text is the literal matched
// substring, used by the stream worker to deduplicate across re-scans.
type Tag struct {
	Kind   TagKind
	Text   string
	Index  int
	Values []string // capture groups, per kind
}

type tagPattern struct {
	kind TagKind
	re   *regexp.Regexp
}

var tagPatterns = []tagPattern{
	{TagRoll, rollTagRe},
	{TagHP, hpTagRe},
	{TagXP, xpTagRe},
	{TagGold, goldTagRe},
	{TagItemAdd, itemAddTagRe},
	{TagItemRemove, itemRemoveTagRe},
}

// FindTags scans content for every completed tag of every kind and
// returns them in document order. Multiple tags of the same kind are
// all reported; deduplication of identical tag text is the caller's
// concern.
func FindTags(content string) []Tag {
	var tags []Tag
	for _, p := range tagPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(content, -1) {
			tag := Tag{
				Kind:  p.kind,
				Text:  content[m[0]:m[1]],
				Index: m[0],
			}
			for i := 2; i < len(m); i += 2 {
				tag.Values = append(tag.Values, content[m[i]:m[i+1]])
			}
			tags = append(tags, tag)
		}
	}
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Index < tags[j].Index })
	return tags
}

// StripTags removes all recognized tag substrings from content for
// display.
func StripTags(content string) string {
	return strings.TrimSpace(stripTagRe.ReplaceAllString(content, ""))
}
