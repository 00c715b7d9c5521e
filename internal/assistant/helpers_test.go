package assistant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"aria/internal/llm"
	"aria/internal/logging"
	"aria/internal/prompts"
)

// Template markers for scripting the mock client. Each is a phrase that
// appears in only one rendered template.
const (
	markClassify     = "判断其意图"
	markTodoExtract  = "提取一条待办事项"
	markTodoBatch    = "多条待办事项"
	markTodoDatetime = "执行时间和截止时间"
	markTodoMatch    = "最匹配的一条"
	markTodoQuery    = "提取查询条件"
	markChatAnswer   = "个人助理"
	markHistAnswer   = "以前记录过的内容"
	markHistKeywords = "检索关键词"
	markLinkExtract  = "判断链接类型"
)

func newTestGateway(t *testing.T, client llm.Client) *llm.Gateway {
	t.Helper()
	registry, err := prompts.NewRegistry()
	require.NoError(t, err)
	return llm.NewGateway(client, registry, time.Second, logging.Nop())
}

// deadGateway has no client at all, so every generation yields "".
func deadGateway(t *testing.T) *llm.Gateway {
	t.Helper()
	return newTestGateway(t, nil)
}
