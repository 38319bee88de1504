package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// TalentCalcPrefix is the exact link prefix a talent string is cut from.
const TalentCalcPrefix = "https://www.wowhead.com/talent-calc/blizzard/"

// talentLinkSelector is looser than TalentCalcPrefix on purpose: an anchor can
// be selected and still yield nothing when its href does not start with the
// exact prefix.
const talentLinkSelector = "a[href*='wowhead.com/talent-calc/blizzard/']"

// TalentString returns the talent string embedded in the first talent
// calculator link of the document. The second return value is false when no
// qualifying link exists or the first one does not carry the exact prefix.
//
// An href equal to the bare prefix yields ("", true).
func TalentString(input []byte) (string, bool) {
	root, err := html.Parse(bytes.NewReader(input))
	if err != nil || root == nil {
		return "", false
	}
	link := goquery.NewDocumentFromNode(root).Find(talentLinkSelector).First()
	if link.Length() == 0 {
		return "", false
	}
	href, ok := link.Attr("href")
	if !ok {
		return "", false
	}
	if !strings.HasPrefix(href, TalentCalcPrefix) {
		return "", false
	}
	return strings.TrimPrefix(href, TalentCalcPrefix), true
}
