package models_test

import (
	"context"
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
)

// Walks one profiling phase through the full dual-approval lifecycle against
// a real database: draft, submit, decisions, auto-finalize, carry-forward,
// supersede and the resubmit round after a rejection.
func TestVersionLifecycle_DualApprovalFlow(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "synapse_test")

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")
	ctx = utils.SetUsernameInContext(ctx, "test@local")

	db := config.GetDB()
	phase := &models.WorkflowPhase{
		CycleId:  1,
		ReportId: 1,
		Name:     models.PhaseDataProfiling,
		Status:   models.PhaseStatusInProgress,
	}
	if err := db.WithContext(ctx).Create(phase).Error; err != nil {
		t.Fatalf("create phase: %v", err)
	}

	v1, err := models.CreateVersion[models.ProfilingRuleVersion, models.ProfilingRule](ctx, phase.ID, nil)
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	if v1.VersionNumber != 1 || v1.Status != models.VersionStatusDraft {
		t.Fatalf("unexpected first version: number=%d status=%q", v1.VersionNumber, v1.Status)
	}

	// An empty draft cannot be submitted.
	if _, err := models.SubmitVersionForApproval[models.ProfilingRuleVersion, models.ProfilingRule](ctx, v1.ID, ""); !models.IsBusinessError(err) {
		t.Fatalf("empty submit: got %v, want business error", err)
	}

	item1 := newRule(t, 1, "balance not null")
	if _, err := models.AddVersionItem[models.ProfilingRuleVersion, models.ProfilingRule](ctx, v1.ID, item1); err != nil {
		t.Fatalf("AddVersionItem: %v", err)
	}

	if _, err := models.SubmitVersionForApproval[models.ProfilingRuleVersion, models.ProfilingRule](ctx, v1.ID, "first round"); err != nil {
		t.Fatalf("submit v1: %v", err)
	}
	v1 = fetchVersion(t, ctx, v1.ID)
	if v1.Status != models.VersionStatusPendingApproval || v1.TotalItems != 1 || v1.PendingItems != 1 {
		t.Fatalf("after submit: status=%q total=%d pending=%d", v1.Status, v1.TotalItems, v1.PendingItems)
	}

	// The tester decision alone leaves the version in flight.
	if _, err := models.RecordItemDecision[models.ProfilingRuleVersion, models.ProfilingRule](ctx, item1.ID, models.DeciderTester, models.DecisionApproved, ""); err != nil {
		t.Fatalf("tester decision: %v", err)
	}
	if v1 = fetchVersion(t, ctx, v1.ID); v1.Status != models.VersionStatusPendingApproval {
		t.Fatalf("tester decision must not finalize, got %q", v1.Status)
	}

	// The last report-owner decision auto-finalizes the version.
	if _, err := models.RecordItemDecision[models.ProfilingRuleVersion, models.ProfilingRule](ctx, item1.ID, models.DeciderReportOwner, models.DecisionApproved, ""); err != nil {
		t.Fatalf("owner decision: %v", err)
	}
	v1 = fetchVersion(t, ctx, v1.ID)
	if v1.Status != models.VersionStatusApproved || v1.ApprovedItems != 1 {
		t.Fatalf("after full approval: status=%q approved=%d", v1.Status, v1.ApprovedItems)
	}

	// A child draft carries the approved item forward with its decisions.
	v2, err := models.CreateVersion[models.ProfilingRuleVersion, models.ProfilingRule](ctx, phase.ID, &v1.ID)
	if err != nil {
		t.Fatalf("CreateVersion v2: %v", err)
	}
	if v2.VersionNumber != 2 || v2.TotalItems != 1 {
		t.Fatalf("carry-forward draft: number=%d total=%d", v2.VersionNumber, v2.TotalItems)
	}
	v2Items, err := models.ListVersionItems[models.ProfilingRule](ctx, v2.ID)
	if err != nil || len(v2Items) != 1 {
		t.Fatalf("v2 items: %v (%d)", err, len(v2Items))
	}
	carried := v2Items[0]
	if carried.CarriedForward == nil || !*carried.CarriedForward {
		t.Fatal("copied item must be flagged carried forward")
	}
	if carried.OwnerDecision == nil || *carried.OwnerDecision != models.DecisionApproved {
		t.Fatal("carried item must keep the prior owner decision until resubmission")
	}

	// Submitting resets the report-owner side so the review starts clean.
	if _, err := models.SubmitVersionForApproval[models.ProfilingRuleVersion, models.ProfilingRule](ctx, v2.ID, "second round"); err != nil {
		t.Fatalf("submit v2: %v", err)
	}
	v2Items, _ = models.ListVersionItems[models.ProfilingRule](ctx, v2.ID)
	carried = v2Items[0]
	if carried.OwnerDecision != nil || carried.OwnerUserId != nil || carried.OwnerAt != nil {
		t.Fatal("submit must clear the report-owner decision on every item")
	}
	if carried.Status != models.ItemStatusSubmitted {
		t.Fatalf("carried item should await the owner again, got %q", carried.Status)
	}

	// Approving v2 supersedes the previously approved v1.
	if _, err := models.RecordItemDecision[models.ProfilingRuleVersion, models.ProfilingRule](ctx, carried.ID, models.DeciderReportOwner, models.DecisionApproved, ""); err != nil {
		t.Fatalf("owner decision on v2: %v", err)
	}
	if v2 = fetchVersion(t, ctx, v2.ID); v2.Status != models.VersionStatusApproved {
		t.Fatalf("v2 should be approved, got %q", v2.Status)
	}
	if v1 = fetchVersion(t, ctx, v1.ID); v1.Status != models.VersionStatusSuperseded {
		t.Fatalf("v1 should be superseded by v2's approval, got %q", v1.Status)
	}

	// A round with a rejection finalizes the version as Rejected.
	v3, err := models.CreateVersion[models.ProfilingRuleVersion, models.ProfilingRule](ctx, phase.ID, &v2.ID)
	if err != nil {
		t.Fatalf("CreateVersion v3: %v", err)
	}
	item2 := newRule(t, 2, "currency in allowed set")
	if _, err := models.AddVersionItem[models.ProfilingRuleVersion, models.ProfilingRule](ctx, v3.ID, item2); err != nil {
		t.Fatalf("add item2: %v", err)
	}
	if _, err := models.SubmitVersionForApproval[models.ProfilingRuleVersion, models.ProfilingRule](ctx, v3.ID, "third round"); err != nil {
		t.Fatalf("submit v3: %v", err)
	}
	if _, err := models.RecordItemDecision[models.ProfilingRuleVersion, models.ProfilingRule](ctx, item2.ID, models.DeciderTester, models.DecisionApproved, ""); err != nil {
		t.Fatalf("tester decision on item2: %v", err)
	}
	v3Items, _ := models.ListVersionItems[models.ProfilingRule](ctx, v3.ID)
	for _, item := range v3Items {
		decision := models.DecisionApproved
		if item.ID == item2.ID {
			decision = models.DecisionRejected
		}
		if _, err := models.RecordItemDecision[models.ProfilingRuleVersion, models.ProfilingRule](ctx, item.ID, models.DeciderReportOwner, decision, ""); err != nil {
			t.Fatalf("owner decision on v3 item: %v", err)
		}
	}
	v3 = fetchVersion(t, ctx, v3.ID)
	if v3.Status != models.VersionStatusRejected || v3.RejectedItems != 1 {
		t.Fatalf("v3 should auto-finalize rejected: status=%q rejected=%d", v3.Status, v3.RejectedItems)
	}
	// A rejection never supersedes the standing approved version.
	if v2 = fetchVersion(t, ctx, v2.ID); v2.Status != models.VersionStatusApproved {
		t.Fatalf("v2 must survive v3's rejection, got %q", v2.Status)
	}

	// Resubmit opens a fresh draft carrying only what the owner did not
	// reject, and retires the rejected round.
	v4, err := models.ResubmitAfterFeedback[models.ProfilingRuleVersion, models.ProfilingRule](ctx, v3.ID)
	if err != nil {
		t.Fatalf("ResubmitAfterFeedback: %v", err)
	}
	if v4.Status != models.VersionStatusDraft || v4.TotalItems != 1 {
		t.Fatalf("resubmit draft: status=%q total=%d", v4.Status, v4.TotalItems)
	}
	if v4.ParentVersionId == nil || *v4.ParentVersionId != v3.ID {
		t.Fatal("resubmit draft must point at the rejected round")
	}
	if v3 = fetchVersion(t, ctx, v3.ID); v3.Status != models.VersionStatusSuperseded {
		t.Fatalf("rejected round should be superseded after resubmit, got %q", v3.Status)
	}
}

func newRule(t *testing.T, attributeId int, name string) *models.ProfilingRule {
	t.Helper()
	input := models.NewProfilingRule{
		AttributeId: attributeId,
		RuleName:    name,
		RuleType:    models.RuleTypeCompleteness,
	}
	item, err := input.ToItem()
	if err != nil {
		t.Fatalf("ToItem: %v", err)
	}
	return item
}

func fetchVersion(t *testing.T, ctx context.Context, versionId string) *models.ProfilingRuleVersion {
	t.Helper()
	v, err := models.GetVersion[models.ProfilingRuleVersion](ctx, versionId)
	if err != nil {
		t.Fatalf("GetVersion %s: %v", versionId, err)
	}
	return v
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
