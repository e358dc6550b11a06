package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"guardroster/internal/dto"
	"guardroster/internal/model"

	pkgerrors "guardroster/pkg/errors"
)

// ── 测试辅助 ──

func setupTestExecutionService() (ExecutionService, *testEnv) {
	env := newTestEnv()
	svc := NewExecutionService(env.repo, env.clock, zap.NewNop())
	return svc, env
}

// ── MarkDay 测试 ──

func TestExecution_MarkDay_SetsManualFlag(t *testing.T) {
	svc, env := setupTestExecutionService()
	env.putDay(workRow("p1", "g1", "2025-01-03"))
	obs := "no se presentó"

	resp, err := svc.MarkDay(context.Background(), &dto.MarkDayRequest{
		PuestoID: "p1", Fecha: "2025-01-03", EstadoGuardia: "Inasistencia", Observaciones: &obs,
	})
	if err != nil {
		t.Fatalf("MarkDay 应成功: %v", err)
	}
	if !resp.EditadoManualmente {
		t.Error("人工标记后 editado_manualmente 应为 true")
	}
	if model.StrVal(resp.EstadoGuardia) != model.EstadoUIInasistencia {
		t.Errorf("estado_guardia 应归一化为 inasistencia，实际 %s", model.StrVal(resp.EstadoGuardia))
	}
	if model.StrVal(resp.Observaciones) != obs {
		t.Errorf("observaciones 期望 %q，实际 %q", obs, model.StrVal(resp.Observaciones))
	}
}

func TestExecution_MarkDay_ThenSyncPreserves(t *testing.T) {
	env := newTestEnv()
	env.seedPost("p1", 4, 4)
	exec := NewExecutionService(env.repo, env.clock, zap.NewNop())
	syncSvc := NewSyncService(testScheduleConfig(), env.repo, NewLocalLocker(), env.clock, nil, zap.NewNop())
	ctx := context.Background()

	if _, err := syncSvc.Synchronize(ctx, assignReq("p1", "g1", "2025-01-01")); err != nil {
		t.Fatalf("同步应成功: %v", err)
	}
	if _, err := exec.MarkDay(ctx, &dto.MarkDayRequest{PuestoID: "p1", Fecha: "2025-01-03", EstadoGuardia: "inasistencia"}); err != nil {
		t.Fatalf("MarkDay 应成功: %v", err)
	}
	if _, err := syncSvc.Synchronize(ctx, assignReq("p1", "g1", "2025-01-01")); err != nil {
		t.Fatalf("重算应成功: %v", err)
	}

	if got := model.StrVal(env.days.row("p1", date("2025-01-03")).EstadoGuardia); got != model.EstadoUIInasistencia {
		t.Errorf("重算后第 3 天应仍为 inasistencia，实际 %s", got)
	}
}

func TestExecution_MarkDay_MissingRow(t *testing.T) {
	svc, _ := setupTestExecutionService()
	_, err := svc.MarkDay(context.Background(), &dto.MarkDayRequest{PuestoID: "p1", Fecha: "2025-01-03", EstadoGuardia: "asistido"})
	if !pkgerrors.IsNotFound(err) {
		t.Fatalf("期望 NotFoundError，实际 %v", err)
	}
}

func TestExecution_MarkDay_UnknownEstado(t *testing.T) {
	svc, env := setupTestExecutionService()
	env.putDay(workRow("p1", "g1", "2025-01-03"))
	_, err := svc.MarkDay(context.Background(), &dto.MarkDayRequest{PuestoID: "p1", Fecha: "2025-01-03", EstadoGuardia: "vacaciones"})
	if !pkgerrors.IsValidation(err) {
		t.Fatalf("期望 ValidationError，实际 %v", err)
	}
}

func TestExecution_MarkDay_InvalidWorkingGuard(t *testing.T) {
	svc, env := setupTestExecutionService()
	env.putDay(workRow("p1", "g1", "2025-01-03"))
	env.seedGuard("g-bad", "", "Soto")
	bad := "g-bad"

	_, err := svc.MarkDay(context.Background(), &dto.MarkDayRequest{
		PuestoID: "p1", Fecha: "2025-01-03", EstadoGuardia: "reemplazo", GuardiaTrabajoID: &bad,
	})
	if !pkgerrors.IsValidation(err) {
		t.Fatalf("期望 ValidationError，实际 %v", err)
	}
}

// ── RegisterCoverage 测试 ──

func TestExecution_RegisterCoverage(t *testing.T) {
	svc, env := setupTestExecutionService()
	env.seedPost("p1", 4, 4)
	env.seedGuard("g2", "Luis", "Rojas")

	resp, err := svc.RegisterCoverage(context.Background(), &dto.CoverageRequest{PuestoID: "p1", GuardiaID: "g2", Fecha: "2025-01-03"})
	if err != nil {
		t.Fatalf("RegisterCoverage 应成功: %v", err)
	}
	if resp.ID == "" || resp.Estado != model.CoverageEstadoPendiente || resp.Fecha != "2025-01-03" {
		t.Errorf("响应字段错误: %+v", resp)
	}
	if len(env.coverage.records) != 1 {
		t.Fatalf("期望 1 条顶班记录，实际 %d", len(env.coverage.records))
	}
}

func TestExecution_RegisterCoverage_Validation(t *testing.T) {
	svc, env := setupTestExecutionService()
	env.seedPost("p1", 4, 4)
	env.seedGuard("g-bad", "Luis", "")

	cases := []*dto.CoverageRequest{
		{PuestoID: "nope", GuardiaID: "g-bad", Fecha: "2025-01-03"},
		{PuestoID: "p1", GuardiaID: "ghost", Fecha: "2025-01-03"},
		{PuestoID: "p1", GuardiaID: "g-bad", Fecha: "2025-01-03"},
		{PuestoID: "p1", GuardiaID: "g-bad", Fecha: "03/01/2025"},
	}
	for _, req := range cases {
		if _, err := svc.RegisterCoverage(context.Background(), req); !pkgerrors.IsValidation(err) {
			t.Errorf("%+v: 期望 ValidationError，实际 %v", req, err)
		}
	}
	if len(env.coverage.records) != 0 {
		t.Error("校验失败时不应写入")
	}
}

// ── MonthlyPlan 测试 ──

func TestExecution_MonthlyPlan(t *testing.T) {
	svc, env := setupTestExecutionService()
	env.seedPost("p1", 4, 4)
	env.putDay(workRow("p1", "g1", "2025-02-02"))
	env.putDay(workRow("p1", "g1", "2025-02-01"))
	env.putDay(workRow("p1", "g1", "2025-03-01"))

	resp, err := svc.MonthlyPlan(context.Background(), &dto.MonthlyPlanRequest{PuestoID: "p1", Anio: 2025, Mes: 2})
	if err != nil {
		t.Fatalf("MonthlyPlan 应成功: %v", err)
	}
	if len(resp.Dias) != 2 || resp.Dias[0].Fecha != "2025-02-01" || resp.Dias[1].Fecha != "2025-02-02" {
		t.Errorf("期望 2 月两天按日期排序，实际 %+v", resp.Dias)
	}
}

func TestExecution_MonthlyPlan_UnknownPost(t *testing.T) {
	svc, _ := setupTestExecutionService()
	_, err := svc.MonthlyPlan(context.Background(), &dto.MonthlyPlanRequest{PuestoID: "nope", Anio: 2025, Mes: 2})
	if !pkgerrors.IsNotFound(err) {
		t.Fatalf("期望 NotFoundError，实际 %v", err)
	}
}
