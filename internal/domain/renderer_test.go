package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"treejson.dev/pkg/treejson/internal/adapter"
	m "treejson.dev/pkg/treejson/internal/model"
)

type mockDriver struct {
	mock.Mock
}

func (d *mockDriver) Update(ctx context.Context, host Host, root m.Node) error {
	return d.Called(ctx, host, root).Error(0)
}

func (d *mockDriver) Pending() bool {
	return d.Called().Bool(0)
}

func (d *mockDriver) Flush(ctx context.Context, host Host) error {
	return d.Called(ctx, host).Error(0)
}

func newMockDriver(t *testing.T) *mockDriver {
	d := &mockDriver{}
	t.Cleanup(func() { d.AssertExpectations(t) })
	return d
}

type errorLog struct {
	errs []error
}

func (l *errorLog) report(err error) {
	l.errs = append(l.errs, err)
}

func newTestRenderer(log *errorLog) Renderer {
	return NewRenderer(adapter.NewJSONPrinter(), log.report, nil)
}

func appendValue(v any) func(mock.Arguments) {
	return func(args mock.Arguments) {
		host := args.Get(1).(Host)
		root := args.Get(2).(m.Node)
		if _, err := host.AppendChild(root, m.NewValue(m.Scalar(v))); err != nil {
			panic(err)
		}
	}
}

func TestRenderer_Render(t *testing.T) {
	d := newMockDriver(t)
	d.On("Update", mock.Anything, mock.Anything, mock.Anything).Run(appendValue("done")).Return(nil)
	d.On("Pending").Return(false)

	result, err := newTestRenderer(&errorLog{}).Render(context.Background(), d, RenderOptions{})
	require.NoError(t, err)

	assert.Equal(t, "done", result.JSONValue)
	assert.Equal(t, `"done"`, result.StringValue)
	assert.Equal(t, 0, result.Rounds)
	assert.Equal(t, m.ProxyKind, result.RootNode.Kind())
	assert.Nil(t, result.SourceMap)
}

func TestRenderer_FlushUntilSettled(t *testing.T) {
	d := newMockDriver(t)
	d.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.On("Pending").Return(true).Twice()
	d.On("Pending").Return(false)
	d.On("Flush", mock.Anything, mock.Anything).Return(nil).Twice()

	result, err := newTestRenderer(&errorLog{}).Render(context.Background(), d, RenderOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Rounds)
	assert.Nil(t, result.JSONValue)
	assert.Equal(t, "null", result.StringValue)
}

func TestRenderer_FlushCap(t *testing.T) {
	d := newMockDriver(t)
	d.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.On("Pending").Return(true)
	d.On("Flush", mock.Anything, mock.Anything).Return(nil).Times(3)

	_, err := newTestRenderer(&errorLog{}).Render(context.Background(), d, RenderOptions{MaxFlushRounds: 3})

	require.ErrorIs(t, err, ErrUnsettled)
	assert.Contains(t, err.Error(), "after 3 flush rounds")
}

func TestRenderer_FlushErrorsAreReported(t *testing.T) {
	boom := errors.New("boom")

	d := newMockDriver(t)
	d.On("Update", mock.Anything, mock.Anything, mock.Anything).Run(appendValue(1)).Return(nil)
	d.On("Pending").Return(true).Once()
	d.On("Pending").Return(false)
	d.On("Flush", mock.Anything, mock.Anything).Return(boom).Once()

	log := &errorLog{}
	result, err := newTestRenderer(log).Render(context.Background(), d, RenderOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.JSONValue)
	require.Len(t, log.errs, 1)
	assert.ErrorIs(t, log.errs[0], boom)
	assert.Contains(t, log.errs[0].Error(), "flush round 1")
}

func TestRenderer_UpdateErrorIsFatal(t *testing.T) {
	d := newMockDriver(t)
	d.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(ErrInvalidNesting)

	_, err := newTestRenderer(&errorLog{}).Render(context.Background(), d, RenderOptions{})

	require.ErrorIs(t, err, ErrInvalidNesting)
	d.AssertNotCalled(t, "Flush", mock.Anything, mock.Anything)
}

func TestRenderer_ConvertError(t *testing.T) {
	d := newMockDriver(t)
	d.On("Update", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		root := args.Get(2).(*m.ProxyNode)
		root.Items = append(root.Items, m.NewValue(m.Fragment{}))
	}).Return(nil)
	d.On("Pending").Return(false)

	_, err := newTestRenderer(&errorLog{}).Render(context.Background(), d, RenderOptions{})

	require.ErrorIs(t, err, ErrUndefinedValue)
}

func TestRenderer_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := newMockDriver(t)
	d.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.On("Pending").Return(true)

	_, err := newTestRenderer(&errorLog{}).Render(ctx, d, RenderOptions{})

	require.ErrorIs(t, err, context.Canceled)
}

func TestRenderer_Indent(t *testing.T) {
	d := newMockDriver(t)
	d.On("Update", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		host := args.Get(1).(Host)
		arr := m.NewArray(m.NewValue(m.Scalar(1)))
		_, err := host.AppendChild(args.Get(2).(m.Node), arr)
		require.NoError(t, err)
	}).Return(nil)
	d.On("Pending").Return(false)

	result, err := newTestRenderer(&errorLog{}).Render(context.Background(), d, RenderOptions{Indent: "\t"})
	require.NoError(t, err)

	assert.Equal(t, "[\n\t1\n]", result.StringValue)
}

func TestFormatJSON(t *testing.T) {
	got, err := FormatJSON(adapter.NewJSONPrinter(), m.MapOf("a", []any{}), "")
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"a\": []\n}", got)
}
