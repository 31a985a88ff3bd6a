package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/models"
	"github.com/regulens/synapse_backend/utils"
	"github.com/regulens/synapse_backend/workflow"
	"gorm.io/gorm"
)

func TestEngineLifecycle_ApprovalAdvancesAndRevisionReopens(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "synapse_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")
	ctx = utils.SetUsernameInContext(ctx, "test@local")

	engine := workflow.NewEngine()

	workflowId, err := engine.StartWorkflow(ctx, 1, 1)
	if err != nil {
		t.Fatalf("StartWorkflow: %v", err)
	}
	if workflowId != "cycle-1-report-1" {
		t.Fatalf("unexpected workflow id %q", workflowId)
	}

	// Starting twice for the same pair must fail as a business error.
	if _, err := engine.StartWorkflow(ctx, 1, 1); !models.IsBusinessError(err) {
		t.Fatalf("duplicate start: got %v, want business error", err)
	}

	phases, err := models.GetPhases(ctx, 1, 1)
	if err != nil {
		t.Fatalf("GetPhases: %v", err)
	}
	if len(phases) != 9 {
		t.Fatalf("expected 9 phases, got %d", len(phases))
	}
	if phases[0].Status != models.PhaseStatusInProgress {
		t.Fatalf("first phase should be in progress, got %q", phases[0].Status)
	}
	for _, p := range phases[1:] {
		if p.Status != models.PhaseStatusNotStarted {
			t.Fatalf("phase %q should be not started, got %q", p.Name, p.Status)
		}
	}

	// Approval completes the phase and opens the next one.
	if err := engine.Signal(ctx, phases[0].ID, models.SignalApproval, nil); err != nil {
		t.Fatalf("approval signal: %v", err)
	}
	phases, _ = models.GetPhases(ctx, 1, 1)
	if phases[0].Status != models.PhaseStatusComplete {
		t.Fatalf("planning should be complete, got %q", phases[0].Status)
	}
	if phases[1].Status != models.PhaseStatusInProgress {
		t.Fatalf("data profiling should be in progress, got %q", phases[1].Status)
	}

	// Re-delivering the same approval is a no-op.
	if err := engine.Signal(ctx, phases[0].ID, models.SignalApproval, nil); err != nil {
		t.Fatalf("duplicate approval signal: %v", err)
	}
	phases, _ = models.GetPhases(ctx, 1, 1)
	if phases[1].Status != models.PhaseStatusInProgress {
		t.Fatalf("duplicate approval must not disturb the open phase, got %q", phases[1].Status)
	}

	// Revision reopens a completed phase; an open phase is left alone.
	if err := engine.Signal(ctx, phases[0].ID, models.SignalRevision, nil); err != nil {
		t.Fatalf("revision signal: %v", err)
	}
	phases, _ = models.GetPhases(ctx, 1, 1)
	if phases[0].Status != models.PhaseStatusInProgress {
		t.Fatalf("revision should reopen planning, got %q", phases[0].Status)
	}

	if err := engine.Signal(ctx, phases[1].ID, "bogus_signal", nil); !errors.Is(err, workflow.ErrUnknownSignal) {
		t.Fatalf("bogus signal: got %v, want ErrUnknownSignal", err)
	}

	// Phase status query returns the same ordered rows.
	result, err := engine.Query(ctx, 1, 1, models.QueryPhaseStatus)
	if err != nil {
		t.Fatalf("query phase status: %v", err)
	}
	queried, ok := result.([]*models.WorkflowPhase)
	if !ok || len(queried) != 9 {
		t.Fatalf("unexpected query result %T", result)
	}

	// Versioned phases never complete directly; they advance through version
	// approval.
	if _, err := models.CompletePhase(ctx, phases[1].ID); !models.IsBusinessError(err) {
		t.Fatalf("completing a versioned phase: got %v, want business error", err)
	}
	// A phase that has not started cannot be completed either.
	if _, err := models.CompletePhase(ctx, phases[4].ID); !models.IsBusinessError(err) {
		t.Fatalf("completing an unstarted phase: got %v, want business error", err)
	}

	// Completing the reopened planning phase queues the approval signal
	// through the outbox; the dispatcher must pick it up exactly once.
	db := config.GetDB()
	if _, err := models.CompletePhase(ctx, phases[0].ID); err != nil {
		t.Fatalf("CompletePhase: %v", err)
	}
	var queued models.WorkflowEventRecord
	if err := db.WithContext(ctx).
		Where("phase_id = ? AND is_processed = ?", phases[0].ID, false).
		Order("id desc").First(&queued).Error; err != nil {
		t.Fatalf("fetch queued outbox record: %v", err)
	}
	eventId := queued.EventId

	dispatcher := workflow.NewOutboxDispatcher(db, config.GetLogger(), engine, nil)
	dispatcherCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	go dispatcher.Run(dispatcherCtx)

	deadline := time.Now().Add(10 * time.Second)
	processed := false
	for time.Now().Before(deadline) {
		var rec models.WorkflowEventRecord
		if err := db.WithContext(ctx).Where("event_id = ?", eventId).First(&rec).Error; err != nil {
			t.Fatalf("fetch outbox record: %v", err)
		}
		if rec.IsProcessed {
			if rec.PublishStatus != models.OutboxPublishStatusPublished {
				t.Fatalf("processed event has status %q", rec.PublishStatus)
			}
			processed = true
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if !processed {
		t.Fatalf("outbox event was not dispatched in time")
	}
	cancel()

	phases, _ = models.GetPhases(ctx, 1, 1)
	if phases[0].Status != models.PhaseStatusComplete {
		t.Fatalf("dispatched approval should complete planning, got %q", phases[0].Status)
	}

	// A second run over the same event must be deduplicated by the
	// idempotency key, not re-signalled.
	var skip bool
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		skip, err = workflow.BeginIdempotency(tx, "workflow_signal", eventId)
		return err
	})
	if err != nil {
		t.Fatalf("BeginIdempotency on handled event: %v", err)
	}
	if !skip {
		t.Fatalf("handled event must be skipped on redelivery")
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("synapse-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("synapse-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=synapse_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
