package query

import "strings"

// NoResultResponse is the single fixed reply for every "no usable
// information" outcome: empty input, no effective retrieval hit, and
// model answers that only state the absence of information.
const NoResultResponse = "抱歉，在选定的知识库中未检索到相关信息。请换一个更具体的关键词或补充上下文后再试。"

// StreamErrorResponse is emitted when a streamed answer cannot be started.
const StreamErrorResponse = "【错误】知识库查询失败：AI服务暂时不可用，请稍后重试。"

// noResultPhrases are the stock "no information" formulations the model
// falls back to. The sync normalizer and the stream probe classifier both
// match against this one list; keeping two copies would let streamed and
// non-streamed answers diverge for the same model output.
var noResultPhrases = []string{
	"没有找到相关信息",
	"未检索到相关信息",
	"信息不足",
	"超出知识库范围",
	"无法根据提供内容回答",
}

func isNoResultLike(text string) bool {
	for _, p := range noResultPhrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// normalizeAnswer maps blank or no-result-like model output to the fixed
// no-result reply; everything else is returned trimmed.
func normalizeAnswer(answer string) string {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" || isNoResultLike(trimmed) {
		return NoResultResponse
	}
	return trimmed
}
