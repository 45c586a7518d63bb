package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/termbridge/termbridge/internal/document"
	"github.com/termbridge/termbridge/internal/progress"
	"github.com/termbridge/termbridge/internal/terminology"
	"github.com/termbridge/termbridge/pkg/providers"
	"go.uber.org/zap"
)

// fakeUnit 记录写回调用，充当文档单元替身
type fakeUnit struct {
	text            string
	bilingual       string
	translationOnly string
	writes          int
}

func (u *fakeUnit) Kind() document.UnitKind { return document.KindParagraph }
func (u *fakeUnit) Text() string            { return u.text }
func (u *fakeUnit) Ref() string             { return "fake" }

func (u *fakeUnit) WriteBilingual(translated string) error {
	u.bilingual = translated
	u.writes++
	return nil
}

func (u *fakeUnit) WriteTranslationOnly(translated string) error {
	u.translationOnly = translated
	u.writes++
	return nil
}

type fakeDocument struct {
	units []document.Unit
	err   error
}

func (d *fakeDocument) Units() ([]document.Unit, error) { return d.units, d.err }
func (d *fakeDocument) Save(string) error               { return nil }
func (d *fakeDocument) Close() error                    { return nil }

// echoProvider 返回固定前缀加原文，模拟正常翻译
type echoProvider struct {
	calls    int
	requests []*providers.Request
	reply    func(req *providers.Request) (string, error)
}

func (p *echoProvider) Translate(_ context.Context, req *providers.Request) (string, error) {
	p.calls++
	p.requests = append(p.requests, req)
	return p.reply(req)
}

func (p *echoProvider) TestConnection(context.Context) error { return nil }

func (p *echoProvider) ListModels(context.Context) ([]string, error) { return nil, nil }

func (p *echoProvider) GetName() string { return "echo" }

func testOptions() Options {
	return Options{
		SourceLang:     "zh",
		TargetLang:     "en",
		TermPreprocess: true,
		Retry:          RetryPolicy{MaxAttempts: 2},
	}
}

func testStore() *terminology.Store {
	return terminology.NewFromEntries(zap.NewNop(), "en", []terminology.Entry{
		{Source: "项目", Target: "project"},
		{Source: "进度", Target: "progress"},
		{Source: "台", Target: "units"},
	})
}

func newTestPipeline(opts Options, provider providers.Provider) *Pipeline {
	return New(opts, testStore(), provider, nil, nil, zap.NewNop())
}

func TestRunBilingual(t *testing.T) {
	provider := &echoProvider{reply: func(*providers.Request) (string, error) {
		return "Project Progress", nil
	}}
	unit := &fakeUnit{text: "项目进度"}
	doc := &fakeDocument{units: []document.Unit{unit}}

	pipe := newTestPipeline(testOptions(), provider)
	summary, err := pipe.Run(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Translated)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, "Project Progress", unit.bilingual)
	assert.Empty(t, unit.translationOnly)

	// 直接替换策略把术语预先改写后才下发
	require.Len(t, provider.requests, 1)
	assert.Equal(t, "projectprogress", provider.requests[0].Text)
}

func TestRunTranslationOnly(t *testing.T) {
	provider := &echoProvider{reply: func(*providers.Request) (string, error) {
		return "Translated", nil
	}}
	unit := &fakeUnit{text: "需要翻译的内容"}
	doc := &fakeDocument{units: []document.Unit{unit}}

	opts := testOptions()
	opts.OutputMode = document.ModeTranslationOnly
	pipe := newTestPipeline(opts, provider)

	_, err := pipe.Run(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "Translated", unit.translationOnly)
	assert.Empty(t, unit.bilingual)
}

func TestRunSkipsEmptyAndDuplicate(t *testing.T) {
	provider := &echoProvider{reply: func(*providers.Request) (string, error) {
		return "never used", nil
	}}
	empty := &fakeUnit{text: "   "}
	duplicate := &fakeUnit{text: "设备清单\nEquipment List"}
	doc := &fakeDocument{units: []document.Unit{empty, duplicate}}

	pipe := newTestPipeline(testOptions(), provider)
	summary, err := pipe.Run(context.Background(), doc)
	require.NoError(t, err)

	// 空单元与双语单元都不触发后端调用
	assert.Zero(t, provider.calls)
	assert.Equal(t, 1, summary.SkippedDuplicate)
	assert.Zero(t, empty.writes)
	assert.Zero(t, duplicate.writes)
}

func TestRunSkipsNoSourceText(t *testing.T) {
	provider := &echoProvider{reply: func(*providers.Request) (string, error) {
		return "never used", nil
	}}
	unit := &fakeUnit{text: "English only line"}
	doc := &fakeDocument{units: []document.Unit{unit}}

	pipe := newTestPipeline(testOptions(), provider)
	summary, err := pipe.Run(context.Background(), doc)
	require.NoError(t, err)

	// 中译外方向下不含表意文字的单元跳过
	assert.Zero(t, provider.calls)
	assert.Equal(t, 1, summary.SkippedNoSource)
}

func TestRunStandaloneUnitLocalRewrite(t *testing.T) {
	provider := &echoProvider{reply: func(*providers.Request) (string, error) {
		return "never used", nil
	}}
	unit := &fakeUnit{text: "10台"}
	doc := &fakeDocument{units: []document.Unit{unit}}

	pipe := newTestPipeline(testOptions(), provider)
	summary, err := pipe.Run(context.Background(), doc)
	require.NoError(t, err)

	// “纯数字+量词”本地改写，不经过后端
	assert.Zero(t, provider.calls)
	assert.Equal(t, 1, summary.LocalRewrites)
	assert.Equal(t, "10 units", unit.bilingual)
}

func TestRunUnitFailureKeepsOriginal(t *testing.T) {
	provider := &echoProvider{reply: func(req *providers.Request) (string, error) {
		if req.Text == "翻译会失败" {
			return "", providers.NewError(providers.ErrCodeTransport, "request failed", errors.New("down"))
		}
		return "This one succeeds", nil
	}}
	failing := &fakeUnit{text: "翻译会失败"}
	ok := &fakeUnit{text: "这条能成功"}
	doc := &fakeDocument{units: []document.Unit{failing, ok}}

	pipe := newTestPipeline(testOptions(), provider)
	summary, err := pipe.Run(context.Background(), doc)
	require.NoError(t, err)

	// 单元级失败不影响后续单元
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Translated)
	assert.Zero(t, failing.writes)
	assert.Equal(t, "This one succeeds", ok.bilingual)
}

func TestRunAuthFailureAborts(t *testing.T) {
	provider := &echoProvider{reply: func(*providers.Request) (string, error) {
		return "", providers.NewError(providers.ErrCodeAuth, "authentication failed", errors.New("401"))
	}}
	doc := &fakeDocument{units: []document.Unit{
		&fakeUnit{text: "第一条"},
		&fakeUnit{text: "第二条"},
	}}

	pipe := newTestPipeline(testOptions(), provider)
	_, err := pipe.Run(context.Background(), doc)

	require.Error(t, err)
	assert.True(t, providers.IsAuthError(err))
	// 认证失败立即中止，第二条不再调用
	assert.Equal(t, 1, provider.calls)
}

func TestRunContainerError(t *testing.T) {
	provider := &echoProvider{reply: func(*providers.Request) (string, error) {
		return "x", nil
	}}
	doc := &fakeDocument{err: errors.New("corrupt archive")}

	pipe := newTestPipeline(testOptions(), provider)
	_, err := pipe.Run(context.Background(), doc)
	require.Error(t, err)

	var pe *providers.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, providers.ErrCodeContainerIO, pe.Code)
}

func TestRunStop(t *testing.T) {
	unitA := &fakeUnit{text: "第一条"}
	unitB := &fakeUnit{text: "第二条"}
	doc := &fakeDocument{units: []document.Unit{unitA, unitB}}

	var pipe *Pipeline
	provider := &echoProvider{reply: func(*providers.Request) (string, error) {
		// 第一条处理期间请求停止
		pipe.Stop()
		return "done", nil
	}}

	pipe = newTestPipeline(testOptions(), provider)
	summary, err := pipe.Run(context.Background(), doc)
	require.NoError(t, err)

	assert.True(t, summary.Stopped)
	// 停止后观察到的结果被丢弃，第二条不再处理
	assert.Zero(t, unitA.writes)
	assert.Zero(t, unitB.writes)
	assert.Equal(t, 1, provider.calls)
}

func TestRunPlaceholderStrategy(t *testing.T) {
	provider := &echoProvider{reply: func(req *providers.Request) (string, error) {
		// 占位符原样穿过“翻译”
		return "Status of " + req.Text, nil
	}}
	unit := &fakeUnit{text: "项目状态"}
	doc := &fakeDocument{units: []document.Unit{unit}}

	opts := testOptions()
	opts.Strategy = terminology.StrategyPlaceholder
	pipe := newTestPipeline(opts, provider)

	summary, err := pipe.Run(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Translated)

	// 下发的是遮蔽后的文本与术语指令
	require.Len(t, provider.requests, 1)
	assert.NotContains(t, provider.requests[0].Text, "项目")
	assert.NotEmpty(t, provider.requests[0].TermInstructions)

	// 写回前占位符被还原为目标术语
	assert.Contains(t, unit.bilingual, "project")
	assert.NotContains(t, unit.bilingual, "[[T")
}

func TestRunFormulaSurvivesTranslation(t *testing.T) {
	provider := &echoProvider{reply: func(req *providers.Request) (string, error) {
		return "Translated " + req.Text, nil
	}}
	unit := &fakeUnit{text: "公式 $E=mc^2$ 说明"}
	doc := &fakeDocument{units: []document.Unit{unit}}

	pipe := newTestPipeline(testOptions(), provider)
	_, err := pipe.Run(context.Background(), doc)
	require.NoError(t, err)

	// 公式未下发给后端，写回时逐字节还原
	require.Len(t, provider.requests, 1)
	assert.NotContains(t, provider.requests[0].Text, "$E=mc^2$")
	assert.Contains(t, unit.bilingual, "$E=mc^2$")
}

func TestRunProgressMonotone(t *testing.T) {
	provider := &echoProvider{reply: func(*providers.Request) (string, error) {
		return "ok", nil
	}}
	doc := &fakeDocument{units: []document.Unit{
		&fakeUnit{text: "第一条"},
		&fakeUnit{text: "第二条"},
		&fakeUnit{text: "第三条"},
	}}

	var fractions []float64
	reporter := progress.NewReporter(func(fraction float64, _ string) {
		fractions = append(fractions, fraction)
	})

	pipe := New(testOptions(), testStore(), provider, nil, reporter, zap.NewNop())
	_, err := pipe.Run(context.Background(), doc)
	require.NoError(t, err)

	require.NotEmpty(t, fractions)
	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1])
	}
	assert.Equal(t, 1.0, fractions[len(fractions)-1])
}
