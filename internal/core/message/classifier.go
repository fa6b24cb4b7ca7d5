package message

import (
	"regexp"
	"strings"
)

// MatchMode 關鍵字比對粒度
type MatchMode string

const (
	// MatchWord 以單字邊界比對，"hiking" 不會命中 "hi"
	MatchWord MatchMode = "word"
	// MatchSubstring 以子字串比對
	MatchSubstring MatchMode = "substring"
)

// Rule 一組對應同一意圖的關鍵字
type Rule struct {
	Kind    Kind
	Phrases []string
}

// DefaultRules 依優先順序排列：付款相關在前，其次為一般對話
var DefaultRules = []Rule{
	{KindPaymentRequest, []string{"pay", "payment", "premium", "upgrade", "subscribe", "buy"}},
	{KindPaymentStatus, []string{"payment status", "status of payment", "payment info", "my payments"}},
	{KindPaymentConfirmation, []string{"confirm payment", "paid", "payment done", "i paid"}},
	{KindAccountInfo, []string{"my account", "account info", "premium status"}},
	{KindStart, []string{"start", "hello", "hi", "hey", "good morning", "good evening"}},
	{KindHelp, []string{"help", "support", "assistance", "issue", "complaint"}},
	{KindMoreOptions, []string{"more"}},
	{KindThankYou, []string{"thank", "thanks", "appreciate", "grateful"}},
	{KindGoodbye, []string{"bye", "goodbye", "see you", "farewell"}},
	{KindHowAreYou, []string{"how are you", "how do you do", "how's it going"}},
	{KindCapabilities, []string{"what can you do", "capabilities", "features"}},
}

type matcher struct {
	kind     Kind
	patterns []*regexp.Regexp
	phrases  []string
}

// Classifier 依序比對關鍵字，第一個命中的規則勝出
type Classifier struct {
	mode     MatchMode
	matchers []matcher
}

// NewClassifier 建立分類器，rules 為 nil 時使用 DefaultRules
func NewClassifier(mode MatchMode, rules []Rule) *Classifier {
	if rules == nil {
		rules = DefaultRules
	}
	if mode != MatchSubstring {
		mode = MatchWord
	}

	c := &Classifier{mode: mode, matchers: make([]matcher, 0, len(rules))}
	for _, r := range rules {
		m := matcher{kind: r.Kind}
		for _, p := range r.Phrases {
			p = strings.ToLower(p)
			m.phrases = append(m.phrases, p)
			if mode == MatchWord {
				m.patterns = append(m.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(p)+`\b`))
			}
		}
		c.matchers = append(c.matchers, m)
	}
	return c
}

// Mode 回傳比對粒度
func (c *Classifier) Mode() MatchMode {
	return c.mode
}

// Classify 對已轉小寫的文字分類，沒有命中時第二個回傳值為 false
func (c *Classifier) Classify(lowered string) (Kind, bool) {
	for _, m := range c.matchers {
		if c.mode == MatchSubstring {
			for _, p := range m.phrases {
				if strings.Contains(lowered, p) {
					return m.kind, true
				}
			}
			continue
		}
		for _, re := range m.patterns {
			if re.MatchString(lowered) {
				return m.kind, true
			}
		}
	}
	return 0, false
}
