package message

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-bot/internal/pkg/common"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "chicken", "chicken"},
		{"trims", "  rice \n", "rice"},
		{"strips unsafe", "<script>{x}[y]\\z", "scriptxyz"},
		{"trims after strip", "< a >", "a"},
		{"keeps punctuation", "gluten-free, 30 min!", "gluten-free, 30 min!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeTruncates(t *testing.T) {
	long := strings.Repeat("é", 600)
	out := Sanitize(long)
	assert.Equal(t, MaxTextLength, utf8.RuneCountInString(out))

	spaced := strings.Repeat("a", 499) + "  tail"
	assert.Equal(t, strings.Repeat("a", 499), Sanitize(spaced))
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"", " ", "<>", "a<b>c", " [x] ", strings.Repeat("ab ", 300), "\\{ }\\", "tomato\t",
		strings.Repeat("x", 499) + " <" + strings.Repeat("y", 10),
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
		assert.LessOrEqual(t, utf8.RuneCountInString(once), MaxTextLength)
		assert.NotContainsf(t, once, "<", "input %q", in)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		body string
		want common.RecipeRequest
		ok   bool
	}{
		{
			name: "full format",
			body: "chicken, rice | Italian | vegetarian | 45",
			want: common.RecipeRequest{
				Ingredients:         []string{"chicken", "rice"},
				Cuisine:             "Italian",
				DietaryRestrictions: []string{"vegetarian"},
				CookingTime:         45,
			},
			ok: true,
		},
		{
			name: "ingredients only keeps order and duplicates",
			body: "eggs, milk, eggs",
			want: common.RecipeRequest{
				Ingredients:         []string{"eggs", "milk", "eggs"},
				DietaryRestrictions: []string{},
			},
			ok: true,
		},
		{
			name: "blank cuisine",
			body: "eggs, cheese | | gluten-free, dairy-free",
			want: common.RecipeRequest{
				Ingredients:         []string{"eggs", "cheese"},
				DietaryRestrictions: []string{"gluten-free", "dairy-free"},
			},
			ok: true,
		},
		{
			name: "digits embedded in time segment",
			body: "pasta | | | about 30 minutes",
			want: common.RecipeRequest{
				Ingredients:         []string{"pasta"},
				DietaryRestrictions: []string{},
				CookingTime:         30,
			},
			ok: true,
		},
		{
			name: "no digits in time segment",
			body: "pasta | | | soon",
			want: common.RecipeRequest{
				Ingredients:         []string{"pasta"},
				DietaryRestrictions: []string{},
			},
			ok: true,
		},
		{
			name: "extra segments ignored",
			body: "beans | Mexican | vegan | 20 | extra",
			want: common.RecipeRequest{
				Ingredients:         []string{"beans"},
				Cuisine:             "Mexican",
				DietaryRestrictions: []string{"vegan"},
				CookingTime:         20,
			},
			ok: true,
		},
		{name: "commas only", body: " , , ", ok: false},
		{name: "empty ingredient segment", body: "| Italian", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Tokenize(tt.body)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Empty(t, got.Ingredients)
			}
		})
	}
}

func TestClassifier(t *testing.T) {
	word := NewClassifier(MatchWord, nil)
	sub := NewClassifier(MatchSubstring, nil)

	tests := []struct {
		text     string
		wantWord Kind
		okWord   bool
		wantSub  Kind
		okSub    bool
	}{
		{"pay for premium, thanks", KindPaymentRequest, true, KindPaymentRequest, true},
		{"show my payments", KindPaymentStatus, true, KindPaymentRequest, true},
		{"i paid", KindPaymentConfirmation, true, KindPaymentConfirmation, true},
		{"my account", KindAccountInfo, true, KindAccountInfo, true},
		{"hello there", KindStart, true, KindStart, true},
		{"i need help", KindHelp, true, KindHelp, true},
		{"more", KindMoreOptions, true, KindMoreOptions, true},
		{"thanks a lot", KindThankYou, true, KindThankYou, true},
		{"bye", KindGoodbye, true, KindGoodbye, true},
		{"how are you", KindHowAreYou, true, KindHowAreYou, true},
		{"what can you do", KindCapabilities, true, KindCapabilities, true},
		{"hiking boots, rice", 0, false, KindStart, true},
		{"chicken, rice", 0, false, KindStart, true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			kind, ok := word.Classify(tt.text)
			assert.Equal(t, tt.okWord, ok, "word mode")
			if tt.okWord {
				assert.Equal(t, tt.wantWord, kind, "word mode got %s", kind)
			}

			kind, ok = sub.Classify(tt.text)
			assert.Equal(t, tt.okSub, ok, "substring mode")
			if tt.okSub {
				assert.Equal(t, tt.wantSub, kind, "substring mode got %s", kind)
			}
		})
	}
}

func TestClassifierCustomRules(t *testing.T) {
	c := NewClassifier("", []Rule{{KindHelp, []string{"SOS"}}})
	assert.Equal(t, MatchWord, c.Mode())

	kind, ok := c.Classify("sos please")
	assert.True(t, ok)
	assert.Equal(t, KindHelp, kind)

	_, ok = c.Classify("pay")
	assert.False(t, ok)
}

func whatsAppText(from, body string) string {
	return `{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{
		"messaging_product":"whatsapp",
		"messages":[{"from":"` + from + `","id":"wamid.1","timestamp":"1","type":"text","text":{"body":"` + body + `"}}]}}]}]}`
}

func TestWhatsAppNormalize(t *testing.T) {
	n := NewWhatsAppNormalizer(nil)

	tests := []struct {
		name string
		body string
		kind Kind
	}{
		{"recipe request", whatsAppText("919876543210", "chicken, rice | Italian | vegetarian | 45"), KindRecipeRequest},
		{"payment wins over thanks", whatsAppText("1", "pay for premium, thanks"), KindPaymentRequest},
		{"greeting", whatsAppText("1", "Hi"), KindStart},
		{"blank", whatsAppText("1", "   "), KindEmpty},
		{"commas only", whatsAppText("1", " , , "), KindNoIngredients},
		{"no ingredient segment", whatsAppText("1", "| Italian"), KindNoIngredients},
		{"hiking is not a greeting", whatsAppText("1", "hiking snacks, nuts"), KindRecipeRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, err := n.Normalize([]byte(tt.body))
			require.NoError(t, err)
			require.NotNil(t, intent)
			assert.Equal(t, tt.kind, intent.Kind, "got %s", intent.Kind)
			assert.Equal(t, PlatformWhatsApp, intent.Platform)
		})
	}
}

func TestWhatsAppNormalizeMissingFields(t *testing.T) {
	n := NewWhatsAppNormalizer(nil)

	tests := []struct {
		name string
		msg  string
		kind Kind
	}{
		{"text without text object", `{"from":"1","type":"text"}`, KindEmpty},
		{"button reply without payload", `{"from":"1","type":"interactive","interactive":{"type":"button_reply"}}`, KindButtonInteraction},
		{"list reply without payload", `{"from":"1","type":"interactive","interactive":{"type":"list_reply"}}`, KindListInteraction},
		{"unknown interactive type", `{"from":"1","type":"interactive","interactive":{"type":"nfm_reply"}}`, KindUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"entry":[{"changes":[{"value":{"messages":[` + tt.msg + `]}}]}]}`
			intent, err := n.Normalize([]byte(body))
			require.NoError(t, err)
			require.NotNil(t, intent)
			assert.Equal(t, tt.kind, intent.Kind, "got %s", intent.Kind)
			assert.Empty(t, intent.InteractionID)
		})
	}
}

func TestWhatsAppNormalizeRecipeArgs(t *testing.T) {
	intent, err := NewWhatsAppNormalizer(nil).Normalize([]byte(whatsAppText("919876543210", "Chicken, Rice | Italian | vegetarian | 45")))
	require.NoError(t, err)
	require.NotNil(t, intent.Recipe)

	assert.Equal(t, "919876543210", intent.Sender)
	assert.Equal(t, []string{"Chicken", "Rice"}, intent.Recipe.Ingredients)
	assert.Equal(t, "Italian", intent.Recipe.Cuisine)
	assert.Equal(t, []string{"vegetarian"}, intent.Recipe.DietaryRestrictions)
	assert.Equal(t, 45, intent.Recipe.CookingTime)
	assert.Equal(t, "Chicken, Rice | Italian | vegetarian | 45", intent.OriginalText)
}

func TestWhatsAppNormalizeNonText(t *testing.T) {
	n := NewWhatsAppNormalizer(nil)

	image := `{"entry":[{"changes":[{"value":{"messages":[{"from":"1","type":"image","image":{"id":"m1"}}]}}]}]}`
	intent, err := n.Normalize([]byte(image))
	require.NoError(t, err)
	assert.Equal(t, KindUnsupported, intent.Kind)

	button := `{"entry":[{"changes":[{"value":{"messages":[{"from":"1","type":"interactive",
		"interactive":{"type":"button_reply","button_reply":{"id":"btn_more","title":"More"}}}]}}]}]}`
	intent, err = n.Normalize([]byte(button))
	require.NoError(t, err)
	assert.Equal(t, KindButtonInteraction, intent.Kind)
	assert.Equal(t, "btn_more", intent.InteractionID)

	list := `{"entry":[{"changes":[{"value":{"messages":[{"from":"1","type":"interactive",
		"interactive":{"type":"list_reply","list_reply":{"id":"row_2","title":"Two"}}}]}}]}]}`
	intent, err = n.Normalize([]byte(list))
	require.NoError(t, err)
	assert.Equal(t, KindListInteraction, intent.Kind)
	assert.Equal(t, "row_2", intent.InteractionID)
}

func TestWhatsAppNormalizeNoMessages(t *testing.T) {
	status := `{"entry":[{"changes":[{"value":{"statuses":[{"id":"wamid.1","status":"delivered","recipient_id":"1"}]}}]}]}`
	intent, err := NewWhatsAppNormalizer(nil).Normalize([]byte(status))
	require.NoError(t, err)
	assert.Nil(t, intent)

	intent, err = NewWhatsAppNormalizer(nil).Normalize([]byte(`{}`))
	require.NoError(t, err)
	assert.Nil(t, intent)
}

func TestWhatsAppNormalizeSkipsMissingSender(t *testing.T) {
	body := `{"entry":[
		{"changes":[{"value":{"messages":[{"type":"text","text":{"body":"hello"}}]}}]},
		{"changes":[{"value":{"messages":[{"from":"42","type":"text","text":{"body":"eggs"}}]}}]}
	]}`
	intent, err := NewWhatsAppNormalizer(nil).Normalize([]byte(body))
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, "42", intent.Sender)
	assert.Equal(t, KindRecipeRequest, intent.Kind)
}

func TestWhatsAppNormalizeMalformed(t *testing.T) {
	_, err := NewWhatsAppNormalizer(nil).Normalize([]byte(`{"entry":`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMalformedPayload))
}

func telegramText(text string) []byte {
	return []byte(`{"update_id":1,"message":{"message_id":2,"chat":{"id":12345,"type":"private"},"text":"` + text + `"}}`)
}

func TestTelegramNormalize(t *testing.T) {
	n := NewTelegramNormalizer()

	tests := []struct {
		name string
		text string
		kind Kind
	}{
		{"start", "/start", KindStart},
		{"help with args", "/help me", KindHelp},
		{"recipe command", "/recipe chicken, rice | Italian", KindRecipeRequest},
		{"bare recipe command", "/recipe", KindEmpty},
		{"blank", "  ", KindEmpty},
		{"no ingredients", "| Italian", KindNoIngredients},
		{"plain ingredients", "eggs, flour, sugar", KindRecipeRequest},
		{"no keyword layer", "thanks", KindRecipeRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, err := n.Normalize(telegramText(tt.text))
			require.NoError(t, err)
			require.NotNil(t, intent)
			assert.Equal(t, tt.kind, intent.Kind, "got %s", intent.Kind)
			assert.Equal(t, "12345", intent.Sender)
			assert.Equal(t, PlatformTelegram, intent.Platform)
		})
	}
}

func TestTelegramNormalizeRecipeArgs(t *testing.T) {
	intent, err := NewTelegramNormalizer().Normalize(telegramText("/recipe tomatoes, pasta | Italian | vegetarian | 30"))
	require.NoError(t, err)
	require.NotNil(t, intent.Recipe)
	assert.Equal(t, common.RecipeRequest{
		Ingredients:         []string{"tomatoes", "pasta"},
		Cuisine:             "Italian",
		DietaryRestrictions: []string{"vegetarian"},
		CookingTime:         30,
	}, *intent.Recipe)
}

func TestTelegramNormalizeCommandIsCaseSensitive(t *testing.T) {
	intent, err := NewTelegramNormalizer().Normalize(telegramText("/Recipe chicken"))
	require.NoError(t, err)
	require.NotNil(t, intent.Recipe)
	assert.Equal(t, []string{"/Recipe chicken"}, intent.Recipe.Ingredients)
}

func TestTelegramNormalizeNoMessage(t *testing.T) {
	n := NewTelegramNormalizer()

	intent, err := n.Normalize([]byte(`{"update_id":1}`))
	require.NoError(t, err)
	assert.Nil(t, intent)

	intent, err = n.Normalize([]byte(`{"update_id":1,"message":{"chat":{"id":1},"photo":[]}}`))
	require.NoError(t, err)
	assert.Nil(t, intent)

	_, err = n.Normalize([]byte(`not json`))
	assert.True(t, errors.Is(err, common.ErrMalformedPayload))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "recipe_request", KindRecipeRequest.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
