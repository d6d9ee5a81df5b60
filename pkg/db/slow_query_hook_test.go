package db

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSlowQueryTracerContextRoundTrip(t *testing.T) {
	tracer := NewSlowQueryTracer(zap.NewNop(), time.Second)

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{
		SQL: "SELECT id FROM activities WHERE phase_id = $1",
	})

	assert.Equal(t, "SELECT id FROM activities WHERE phase_id = $1", tracer.getSQLFromContext(ctx))
	_, ok := ctx.Value(queryStartTimeKey).(time.Time)
	assert.True(t, ok)

	// 使用私有 key 类型，外部的字符串 key 取不到值
	assert.Nil(t, ctx.Value("query_sql"))
	assert.Nil(t, ctx.Value("query_start_time"))
}

func TestSlowQueryTracerEndWithoutStart(t *testing.T) {
	tracer := NewSlowQueryTracer(zap.NewNop(), time.Second)

	assert.NotPanics(t, func() {
		tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})
	})
	assert.Equal(t, "", tracer.getSQLFromContext(context.Background()))
}
