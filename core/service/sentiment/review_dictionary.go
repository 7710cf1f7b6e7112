// Package sentiment implements the hybrid review sentiment pipeline:
// fingerprint cache, rule-based scoring, topic extraction, escalation and
// model-backed deep analysis with local fallback.
package sentiment

import "github.com/bravo6co-debug/ai-riview/core/domain"

// =============================================================================
// Static Dictionaries
// =============================================================================

// tier is one intensity band of a polarity dictionary.
type tier struct {
	weight   float64
	keywords []string
}

// 감정 키워드 사전. 훌륭 appears in both strong and medium on purpose.
var (
	positiveTiers = []tier{
		{weight: 3, keywords: []string{"최고", "완벽", "훌륭", "감동", "환상", "대박", "짱", "끝내주"}},
		{weight: 2, keywords: []string{"맛있", "좋아", "친절", "깨끗", "추천", "만족", "괜찮", "훌륭"}},
		{weight: 1, keywords: []string{"나쁘지않", "그럭저럭", "무난", "괜찮은"}},
	}

	negativeTiers = []tier{
		{weight: 3, keywords: []string{"최악", "끔찍", "환불", "신고", "쓰레기", "형편없", "먹을수없"}},
		{weight: 2, keywords: []string{"별로", "실망", "불만", "후회", "아쉬", "불친절", "맛없"}},
		{weight: 1, keywords: []string{"조금", "약간", "다소", "살짝"}},
	}

	// 증폭 표현: boosts only the negative score.
	amplifiers = []string{"너무", "정말", "진짜", "완전", "엄청", "매우", "아주"}
)

// Amplifier factor applied to a non-zero negative score.
const negativeAmplification = 1.5

// topicCategory is one fixed review subject.
type topicCategory struct {
	name     string
	keywords []string
	positive []string
	negative []string
}

// Topic labels.
const (
	TopicQuality     = "맛/품질"
	TopicService     = "서비스"
	TopicAmbience    = "분위기/시설"
	TopicCleanliness = "청결"
	TopicPrice       = "가격"
	TopicWaitTime    = "대기시간"
)

// Declaration order is the tie-break order when ranking topics.
var topicCategories = []topicCategory{
	{
		name:     TopicQuality,
		keywords: []string{"맛", "음식", "요리", "신선", "재료", "식재료", "품질", "간"},
		positive: []string{"맛있", "신선", "푸짐", "고소", "달콤", "깔끔한맛"},
		negative: []string{"맛없", "식은", "상한", "짜", "싱거", "비린"},
	},
	{
		name:     TopicService,
		keywords: []string{"직원", "알바", "응대", "태도", "서비스", "사장", "주인"},
		positive: []string{"친절", "빠른", "정중", "상냥", "세심"},
		negative: []string{"불친절", "느린", "무례", "퉁명", "무시"},
	},
	{
		name:     TopicAmbience,
		keywords: []string{"인테리어", "좌석", "공간", "분위기", "시설", "화장실", "테이블"},
		positive: []string{"깔끔", "아늑", "넓은", "예쁜", "세련"},
		negative: []string{"낡은", "불편", "좁은", "지저분", "어둡"},
	},
	{
		name:     TopicCleanliness,
		keywords: []string{"위생", "깨끗", "냄새", "청결", "더러", "지저분"},
		positive: []string{"청결", "깨끗", "위생적"},
		negative: []string{"더럽", "지저분", "벌레", "곰팡이", "냄새"},
	},
	{
		name:     TopicPrice,
		keywords: []string{"가격", "가성비", "비용", "돈", "값", "비싸", "저렴"},
		positive: []string{"저렴", "합리적", "가성비", "착한가격"},
		negative: []string{"비싸", "바가지", "비쌈", "부담"},
	},
	{
		name:     TopicWaitTime,
		keywords: []string{"대기", "기다림", "시간", "웨이팅", "줄"},
		positive: []string{"빠른", "신속", "회전"},
		negative: []string{"느린", "오래", "늦", "지연"},
	},
}

// Result bounds.
const (
	MaxTopics   = 3
	MaxKeywords = 5
)

// localTemplate is the canned reply guidance for one sentiment.
type localTemplate struct {
	intent domain.Intent
	focus  []string
	avoid  []string
}

var localTemplates = map[domain.Sentiment]localTemplate{
	domain.SentimentPositive: {
		intent: domain.IntentPraise,
		focus:  []string{"구체적인 칭찬 포인트 감사", "지속적인 품질 약속"},
		avoid:  []string{"형식적인 답변", "과도한 마케팅"},
	},
	domain.SentimentNegative: {
		intent: domain.IntentComplaint,
		focus:  []string{"진심 어린 사과", "구체적 개선 약속"},
		avoid:  []string{"변명", "책임 회피"},
	},
	domain.SentimentNeutral: {
		intent: domain.IntentGeneral,
		focus:  []string{"방문 감사", "개선 의지"},
		avoid:  []string{"무성의한 답변"},
	},
}
