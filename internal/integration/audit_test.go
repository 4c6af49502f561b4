package integration

import (
	"context"
	"testing"

	"task_manager/internal/domain"
	"task_manager/internal/service"

	"github.com/google/uuid"
)

func runAuditSuite(t *testing.T, users service.UserStore, audit service.AuditStore) {
	ctx := context.Background()

	u := &domain.User{Name: "audit", Email: "audit-" + uuid.NewString() + "@example.com", PasswordHash: "x"}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	svc := service.NewAuditService(audit)
	ctx = service.WithRequestMeta(ctx, service.RequestMeta{IP: "127.0.0.1", UserAgent: "it"})
	svc.Log(ctx, u.ID, domain.AuditActionSignup, domain.AuditCategoryAuth, nil)
	svc.Log(ctx, u.ID, domain.AuditActionTaskCreate, domain.AuditCategoryTask, map[string]any{"title": "T1"})

	entries, err := svc.Recent(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries; want 2", len(entries))
	}
	if entries[0].Action != domain.AuditActionTaskCreate || entries[0].Details["title"] != "T1" {
		t.Fatalf("newest entry = %+v", entries[0])
	}
	if entries[1].IP != "127.0.0.1" || entries[1].UserAgent != "it" {
		t.Fatalf("request meta missing: %+v", entries[1])
	}
}
