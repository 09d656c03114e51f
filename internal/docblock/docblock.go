// Package docblock reads "///" XML documentation comments far enough to tell
// whether a declaration documents itself and whether it asks to inherit.
package docblock

import (
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strings"

	"inheritdoc/internal/hierarchy"
)

// Comment is what a declaration's documentation comment contributes.
type Comment struct {
	Block   *hierarchy.DocumentationBlock
	Inherit *hierarchy.InheritDirective
}

var (
	inheritTagRe = regexp.MustCompile(`<inheritdoc(?:\s+cref\s*=\s*"([^"]*)")?[^>]*?/?>(?:\s*</inheritdoc>)?`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// StripMarkers removes the "///" prefix and one following space from each line.
func StripMarkers(lines []string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "///")
		l = strings.TrimPrefix(l, " ")
		out = append(out, strings.TrimRight(l, " \t\r"))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Parse reads a run of "///" comment lines. It returns nil for an empty comment.
func Parse(lines []string) *Comment {
	return ParseText(StripMarkers(lines))
}

// ParseText reads comment text whose "///" markers are already stripped.
func ParseText(raw string) *Comment {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	c, err := parseXML(raw)
	if err != nil {
		return parseMalformed(raw)
	}
	return c
}

func parseXML(raw string) (*Comment, error) {
	d := xml.NewDecoder(strings.NewReader("<doc>" + raw + "</doc>"))
	d.Strict = true
	d.Entity = xml.HTMLEntity

	c := &Comment{}
	block := &hierarchy.DocumentationBlock{Raw: raw}
	hasContent := false
	depth := 0

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth != 2 {
				continue
			}
			if t.Name.Local == "inheritdoc" {
				c.Inherit = &hierarchy.InheritDirective{Cref: attr(t, "cref")}
				if err := d.Skip(); err != nil {
					return nil, err
				}
				depth--
				continue
			}
			text, err := innerText(d)
			if err != nil {
				return nil, err
			}
			depth--
			hasContent = true
			setTag(block, t, text)
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 1 && strings.TrimSpace(string(t)) != "" {
				hasContent = true
			}
		}
	}

	if hasContent {
		c.Block = block
	}
	return c, nil
}

// innerText collects the text of the current element up to its end tag.
// Reference tags such as <see cref="X"/> contribute their target's name.
func innerText(d *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "see", "seealso", "paramref", "typeparamref":
				ref := attr(t, "cref")
				if ref == "" {
					ref = attr(t, "name")
				}
				if ref == "" {
					ref = attr(t, "langword")
				}
				sb.WriteString(shortName(ref))
			}
		case xml.EndElement:
			depth--
		case xml.CharData:
			sb.Write(t)
		}
	}
	return collapse(sb.String()), nil
}

func setTag(b *hierarchy.DocumentationBlock, t xml.StartElement, text string) {
	switch t.Name.Local {
	case "summary":
		b.Summary = joinText(b.Summary, text)
	case "remarks":
		b.Remarks = joinText(b.Remarks, text)
	case "returns":
		b.Returns = joinText(b.Returns, text)
	case "value":
		b.Value = joinText(b.Value, text)
	default:
		key := t.Name.Local
		if qual := attr(t, "name"); qual != "" {
			key += ":" + qual
		} else if qual := attr(t, "cref"); qual != "" {
			key += ":" + qual
		}
		if b.Tags == nil {
			b.Tags = make(map[string]string)
		}
		b.Tags[key] = joinText(b.Tags[key], text)
	}
}

// parseMalformed keeps text the XML reader rejects (a bare "<" in a summary,
// for example) as an opaque block.
func parseMalformed(raw string) *Comment {
	c := &Comment{}
	if m := inheritTagRe.FindStringSubmatch(raw); m != nil {
		c.Inherit = &hierarchy.InheritDirective{Cref: m[1]}
		raw = strings.TrimSpace(inheritTagRe.ReplaceAllString(raw, ""))
	}
	if raw != "" {
		c.Block = &hierarchy.DocumentationBlock{Raw: raw, Malformed: true}
	}
	return c
}

func attr(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

func shortName(ref string) string {
	ref = hierarchy.NormalizeRef(ref)
	if i := strings.LastIndex(ref, "."); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func collapse(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func joinText(existing, text string) string {
	if existing == "" {
		return text
	}
	return existing + "\n" + text
}
