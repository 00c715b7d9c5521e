package intent

import (
	"regexp"
	"strings"
)

// Deterministic keyword fallback used whenever the model's answer is absent
// or unparseable. Rules are evaluated top to bottom and the first match
// wins; the ordering is part of the classifier contract: reordering changes
// outcomes for ambiguous text.

var urlPattern = regexp.MustCompile(`(?i)\bhttps?://[^\s]+|\bwww\.[^\s]+\.[a-z]{2,}`)

var (
	todoVocabulary = []string{
		"待办", "待辦", "提醒我", "记得", "記得", "别忘", "別忘", "任务", "任務",
		"要做", "要交", "要去", "得去", "安排", "todo", "to-do", "deadline", "截止",
	}
	queryVerbs = []string{
		"有哪些", "有什么任务", "有什麼任務", "查询", "查一下", "看看", "列出",
		"还有什么", "還有什麼", "哪些没做", "哪些沒做", "什么安排", "什麼安排",
	}
	completionVocabulary = []string{
		"完成了", "做完", "写完", "寫完", "完了", "搞定", "弄完", "办完", "辦完",
		"取消", "不用了", "不做了", "done", "finished",
	}
	feedbackVocabulary = []string{
		"反馈", "反饋", "建议你们", "建議你們", "吐槽", "投诉", "投訴", "意见", "意見", "bug",
	}
	recommendationVocabulary = []string{
		"推荐", "推薦", "有什么好", "有什麼好", "求推", "安利",
	}
	historyVocabulary = []string{
		"之前", "以前", "上次", "历史记录", "歷史記錄", "我说过", "我說過", "记录过", "記錄過", "找一下",
	}
)

// ClassifyByKeywords is the ordered heuristic fallback classifier.
func ClassifyByKeywords(text string) Classification {
	lowered := strings.ToLower(text)

	if urlPattern.MatchString(lowered) {
		return Classification{Intent: IntentLink, Confidence: 0.9}
	}

	hasTodoVocab := containsAny(lowered, todoVocabulary)
	if hasTodoVocab && containsAny(lowered, queryVerbs) {
		return Classification{Intent: IntentTodo, SubIntent: SubIntentQuery, Confidence: 0.7}
	}
	if containsAny(lowered, completionVocabulary) {
		return Classification{Intent: IntentTodo, SubIntent: SubIntentUpdate, Confidence: 0.7}
	}
	if hasTodoVocab {
		return Classification{Intent: IntentTodo, SubIntent: SubIntentCreate, Confidence: 0.7}
	}

	if containsAny(lowered, feedbackVocabulary) {
		return Classification{Intent: IntentFeedback, Confidence: 0.6}
	}
	if containsAny(lowered, recommendationVocabulary) {
		return Classification{Intent: IntentRecommendation, Confidence: 0.6}
	}
	if containsAny(lowered, historyVocabulary) {
		return Classification{Intent: IntentChatHistory, Confidence: 0.6}
	}

	return Classification{Intent: IntentOther, Confidence: 0.5}
}

func containsAny(text string, vocabulary []string) bool {
	for _, word := range vocabulary {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
