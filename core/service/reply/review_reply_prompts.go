package reply

import (
	"fmt"
	"strings"

	"github.com/bravo6co-debug/ai-riview/core/domain"
)

// =============================================================================
// Prompts
// =============================================================================

const promptPersona = "당신은 한국 프랜차이즈 매장의 전문적이고 진심어린 고객 서비스 담당자입니다."

var systemPrompts = map[domain.Sentiment]string{
	domain.SentimentPositive: promptPersona + `

고객의 긍정적인 리뷰에 감사하며, 진정성 있고 따뜻한 답글을 작성합니다.
형식적이지 않고 고객이 언급한 구체적인 내용을 인용하여 답변합니다.

답글 작성 원칙:
- 고객이 언급한 구체적인 내용(맛, 서비스, 분위기 등)을 인용
- 80-120자 내외로 간결하게
- 따뜻하고 진정성 있는 톤
- 자연스러운 이모지 1-2개 사용
- 형식적인 문구 지양`,

	domain.SentimentNegative: promptPersona + `

고객의 불만에 진심으로 공감하고 사과하며, 구체적인 개선 방안을 제시합니다.
변명하거나 책임을 회피하지 않고, 문제를 정확히 이해했음을 보여줍니다.

답글 작성 원칙:
- 진심 어린 사과로 시작
- 고객이 지적한 구체적인 문제점 언급
- 명확한 개선 약속 또는 보상 제안
- 80-120자 내외로 간결하게
- 진지하고 책임감 있는 톤
- 변명이나 책임 회피 금지`,

	domain.SentimentNeutral: promptPersona + `

고객의 방문과 피드백에 감사하며, 더 나은 경험을 제공하겠다는 의지를 전달합니다.

답글 작성 원칙:
- 방문 감사 표현
- 고객의 피드백을 진지하게 받아들임을 표현
- 개선 의지 전달
- 80-120자 내외로 간결하게
- 정중하고 따뜻한 톤
- 자연스러운 이모지 1개 사용`,
}

// SystemPrompt returns the persona for sentiment; unknown values use neutral.
func SystemPrompt(sentiment domain.Sentiment) string {
	if p, ok := systemPrompts[sentiment]; ok {
		return p
	}
	return systemPrompts[domain.SentimentNeutral]
}

const (
	defaultFocus = "고객의 피드백에 진심으로 감사"
	defaultAvoid = "형식적인 답변"
)

// BuildUserPrompt renders the analysis, the review and the store profile
// into the reply request.
func BuildUserPrompt(content string, analysis *domain.AnalysisResult, brand Brand) string {
	var b strings.Builder

	intent := analysis.Intent
	if intent == "" {
		intent = domain.IntentGeneral
	}

	b.WriteString("[고객 리뷰 분석 결과]\n")
	fmt.Fprintf(&b, "감정: %s (강도: %d%%)\n", analysis.Sentiment, int(analysis.SentimentStrength*100))
	fmt.Fprintf(&b, "고객 의도: %s\n", intent)
	fmt.Fprintf(&b, "주요 주제: %s\n", strings.Join(analysis.Topics, ", "))
	fmt.Fprintf(&b, "핵심 키워드: %s\n\n", strings.Join(analysis.Keywords, ", "))

	b.WriteString("[리뷰 내용]\n")
	b.WriteString("\"" + content + "\"\n\n")

	b.WriteString("[매장 정보]\n")
	fmt.Fprintf(&b, "- 매장명/유형: %s\n", BusinessTypeLabel(brand.Context))
	if brand.Tone != "" {
		fmt.Fprintf(&b, "- 톤앤매너: %s\n", BrandToneLabel(brand.Tone))
		fmt.Fprintf(&b, "- 말투 가이드: %s\n", ToneGuide(brand.Tone))
	}
	b.WriteString("\n")

	b.WriteString("[답글 작성 가이드라인]\n")
	b.WriteString("강조할 포인트:\n")
	writeBullets(&b, analysis.ReplyFocus, defaultFocus)
	b.WriteString("\n피해야 할 요소:\n")
	writeBullets(&b, analysis.ReplyAvoid, defaultAvoid)

	b.WriteString(`
[구체적 요구사항]
1. 고객이 언급한 구체적인 키워드를 반드시 1-2개 포함
2. 80-120자 길이 (공백 포함)
3. 자연스러운 한국어 구어체
4. 이모지는 최소한으로 (1-2개)
5. 문장은 2-3개로 구성

답글만 작성하세요 (부가 설명 없이):`)

	return b.String()
}

func writeBullets(b *strings.Builder, items []string, fallback string) {
	if len(items) == 0 {
		items = []string{fallback}
	}
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}

// =============================================================================
// Store profile
// =============================================================================

// Brand describes the replying store.
type Brand struct {
	Context string // business type value ("cafe") or free text ("카페")
	Tone    string // brand tone value; empty leaves tone to the persona
}

// DefaultBrandContext is used when the caller names no business type.
const DefaultBrandContext = "카페"

var businessTypes = map[string]string{
	"cafe":                "카페",
	"restaurant_korean":   "한식당",
	"restaurant_chinese":  "중식당",
	"restaurant_japanese": "일식당",
	"restaurant_western":  "양식당",
	"restaurant_buffet":   "뷔페",
	"bakery":              "베이커리",
	"dessert":             "디저트",
	"fastfood":            "패스트푸드",
	"bar":                 "술집/바",
	"salon":               "미용실",
	"nail":                "네일샵",
	"spa":                 "스파/마사지",
	"fitness":             "헬스장/PT",
	"hospital":            "병원",
	"dental":              "치과",
	"hotel":               "숙박/호텔",
	"retail":              "소매점",
	"other":               "기타",
}

// BusinessTypeLabel maps a business type value to its label. Unknown values
// are returned unchanged so free-text contexts pass through.
func BusinessTypeLabel(value string) string {
	if label, ok := businessTypes[value]; ok {
		return label
	}
	if strings.TrimSpace(value) == "" {
		return DefaultBrandContext
	}
	return value
}

// Brand tones
const (
	ToneFriendly     = "friendly"
	ToneProfessional = "professional"
	ToneCasual       = "casual"
	ToneWarm         = "warm"
	ToneEnergetic    = "energetic"
	ToneLuxury       = "luxury"
	ToneMinimalist   = "minimalist"
)

var brandToneLabels = map[string]string{
	ToneFriendly:     "친근한",
	ToneProfessional: "전문적인",
	ToneCasual:       "캐주얼한",
	ToneWarm:         "따뜻한",
	ToneEnergetic:    "활기찬",
	ToneLuxury:       "고급스러운",
	ToneMinimalist:   "미니멀",
}

var toneGuides = map[string]string{
	ToneFriendly:     "편안하고 다정한 말투로 작성하세요. 고객과의 친밀감을 느낄 수 있도록 따뜻한 표현을 사용하세요.",
	ToneProfessional: "정중하고 격식 있는 말투로 작성하세요. 신뢰감을 주는 전문적인 어조를 유지하세요.",
	ToneCasual:       "가볍고 부담 없는 말투로 작성하세요. 편안하면서도 친근한 분위기를 연출하세요.",
	ToneWarm:         "진심 어린 감사와 배려가 느껴지도록 작성하세요. 고객의 마음을 따뜻하게 감싸는 표현을 사용하세요.",
	ToneEnergetic:    "밝고 긍정적인 에너지가 느껴지도록 작성하세요. 활기차고 열정적인 분위기를 전달하세요.",
	ToneLuxury:       "품격 있고 세련된 표현을 사용하세요. 고급스러운 서비스를 제공하는 브랜드의 이미지를 유지하세요.",
	ToneMinimalist:   "간결하고 핵심만 전달하세요. 불필요한 수식어 없이 명확하게 전달하세요.",
}

// IsBrandTone reports whether tone is a known value.
func IsBrandTone(tone string) bool {
	_, ok := brandToneLabels[tone]
	return ok
}

// BrandToneLabel returns the display label, or tone itself when unknown.
func BrandToneLabel(tone string) string {
	if label, ok := brandToneLabels[tone]; ok {
		return label
	}
	return tone
}

// ToneGuide returns the writing guide for tone, friendly when unknown.
func ToneGuide(tone string) string {
	if guide, ok := toneGuides[tone]; ok {
		return guide
	}
	return toneGuides[ToneFriendly]
}
