package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/utils"
	"gorm.io/gorm"
)

// The version/approval lifecycle recurs in four phases (Data Profiling,
// Scoping, Sample Selection, Observation Management). It is implemented once
// here; the phase files only declare their concrete version/item tables and
// thin wrappers.

type VersionCore struct {
	ID              string        `gorm:"primaryKey;size:36" json:"id"`
	PhaseId         int           `gorm:"index;not null" json:"phase_id"`
	VersionNumber   int           `gorm:"not null" json:"version_number"`
	Status          VersionStatus `gorm:"size:20;not null;default:'Draft'" json:"status"`
	ParentVersionId *string       `gorm:"size:36" json:"parent_version_id"`
	TotalItems      int           `gorm:"not null;default:0" json:"total_items"`
	ApprovedItems   int           `gorm:"not null;default:0" json:"approved_items"`
	RejectedItems   int           `gorm:"not null;default:0" json:"rejected_items"`
	PendingItems    int           `gorm:"not null;default:0" json:"pending_items"`
	SubmittedBy     *int          `json:"submitted_by"`
	SubmittedAt     *time.Time    `json:"submitted_at"`
	SubmissionNotes string        `gorm:"type:text" json:"submission_notes"`
	ApprovedBy      *int          `json:"approved_by"`
	ApprovedAt      *time.Time    `json:"approved_at"`
	ApprovalNotes   string        `gorm:"type:text" json:"approval_notes"`
	RejectionReason string        `gorm:"type:text" json:"rejection_reason"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

type ItemCore struct {
	ID             string      `gorm:"primaryKey;size:36" json:"id"`
	VersionId      string      `gorm:"index;size:36;not null" json:"version_id"`
	Status         ItemStatus  `gorm:"size:20;not null;default:'Pending'" json:"status"`
	CarriedForward *bool       `gorm:"not null;default:false" json:"carried_forward"`
	TesterDecision *Decision   `gorm:"size:20" json:"tester_decision"`
	TesterUserId   *int        `json:"tester_user_id"`
	TesterAt       *time.Time  `json:"tester_at"`
	TesterNotes    string      `gorm:"type:text" json:"tester_notes"`
	OwnerDecision  *Decision   `gorm:"size:20" json:"report_owner_decision"`
	OwnerUserId    *int        `json:"report_owner_user_id"`
	OwnerAt        *time.Time  `json:"report_owner_at"`
	OwnerNotes     string      `gorm:"type:text" json:"report_owner_notes"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// Versioned is implemented by every phase version table.
type Versioned interface {
	Core() *VersionCore
	Family() string
}

// Decidable is implemented by every phase item table.
type Decidable interface {
	Base() *ItemCore
	Family() string
}

// pointer constraints so generic functions can mutate concrete rows
type VersionPtr[V any] interface {
	*V
	Versioned
}

type ItemPtr[I any] interface {
	*I
	Decidable
}

/* pure lifecycle rules (DB-free, unit tested) */

// DeriveItemStatus computes the stored overall status from the two decisions:
// Approved only when both approved, Rejected when either rejected, Submitted
// when the tester has approved and the report owner has not decided yet.
func DeriveItemStatus(tester *Decision, owner *Decision) ItemStatus {
	if (tester != nil && *tester == DecisionRejected) || (owner != nil && *owner == DecisionRejected) {
		return ItemStatusRejected
	}
	if tester != nil && *tester == DecisionApproved && owner != nil && *owner == DecisionApproved {
		return ItemStatusApproved
	}
	if tester != nil && *tester == DecisionApproved {
		return ItemStatusSubmitted
	}
	return ItemStatusPending
}

// CanTransition validates the version state machine:
// Draft -> PendingApproval -> {Approved | Rejected}; Superseded only from Approved.
func CanTransition(from, to VersionStatus) bool {
	switch from {
	case VersionStatusDraft:
		return to == VersionStatusPendingApproval
	case VersionStatusPendingApproval:
		return to == VersionStatusApproved || to == VersionStatusRejected
	case VersionStatusApproved:
		return to == VersionStatusSuperseded
	}
	return false
}

// CarryForwardEligible reports whether an item survives a resubmit:
// the tester approved it and the report owner did not reject it.
func CarryForwardEligible(core *ItemCore) bool {
	if core.TesterDecision == nil || *core.TesterDecision != DecisionApproved {
		return false
	}
	if core.OwnerDecision != nil && *core.OwnerDecision == DecisionRejected {
		return false
	}
	return true
}

// RecomputeCounts tallies the aggregate columns from item statuses.
// total == approved + rejected + pending holds by construction
// (Submitted counts as pending until the report owner decides).
func RecomputeCounts(statuses []ItemStatus) (total, approved, rejected, pending int) {
	for _, s := range statuses {
		total++
		switch s {
		case ItemStatusApproved:
			approved++
		case ItemStatusRejected:
			rejected++
		default:
			pending++
		}
	}
	return
}

// AllDecided reports whether every item carries both decisions.
func AllDecided(cores []*ItemCore) bool {
	if len(cores) == 0 {
		return false
	}
	for _, c := range cores {
		if c.TesterDecision == nil || c.OwnerDecision == nil {
			return false
		}
	}
	return true
}

/* DB operations */

func loadVersion[V any, PV VersionPtr[V]](tx *gorm.DB, versionId string) (*V, error) {
	var v V
	if err := tx.Where("id = ?", versionId).First(&v).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &v, nil
}

func loadItems[I any, PI ItemPtr[I]](tx *gorm.DB, versionId string) ([]I, error) {
	var items []I
	if err := tx.Where("version_id = ?", versionId).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func itemCores[I any, PI ItemPtr[I]](items []I) []*ItemCore {
	cores := make([]*ItemCore, 0, len(items))
	for i := range items {
		cores = append(cores, PI(&items[i]).Base())
	}
	return cores
}

func refreshCounts[V any, I any, PV VersionPtr[V], PI ItemPtr[I]](tx *gorm.DB, version *V) error {
	core := PV(version).Core()
	items, err := loadItems[I, PI](tx, core.ID)
	if err != nil {
		return err
	}
	statuses := make([]ItemStatus, 0, len(items))
	for i := range items {
		statuses = append(statuses, PI(&items[i]).Base().Status)
	}
	total, approved, rejected, pending := RecomputeCounts(statuses)
	core.TotalItems, core.ApprovedItems, core.RejectedItems, core.PendingItems = total, approved, rejected, pending
	return tx.Model(version).Updates(map[string]interface{}{
		"TotalItems":    total,
		"ApprovedItems": approved,
		"RejectedItems": rejected,
		"PendingItems":  pending,
	}).Error
}

// CreateVersion opens a new draft for the phase, version_number = max+1.
// When parentVersionId is set, carry-forward-eligible items of the parent are
// copied onto the new draft with their prior decisions preserved.
func CreateVersion[V any, I any, PV VersionPtr[V], PI ItemPtr[I]](ctx context.Context, phaseId int, parentVersionId *string) (*V, error) {

	if err := utils.ValidateResourceId[WorkflowPhase](ctx, phaseId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var created *V
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxNumber int
		if err := tx.Model(PV(new(V))).Where("phase_id = ?", phaseId).
			Select("COALESCE(MAX(version_number), 0)").Scan(&maxNumber).Error; err != nil {
			return err
		}

		var v V
		core := PV(&v).Core()
		core.ID = uuid.NewString()
		core.PhaseId = phaseId
		core.VersionNumber = maxNumber + 1
		core.Status = VersionStatusDraft
		core.ParentVersionId = parentVersionId
		if err := tx.Create(&v).Error; err != nil {
			return err
		}

		if parentVersionId != nil {
			parent, err := loadVersion[V, PV](tx, *parentVersionId)
			if err != nil {
				return err
			}
			if PV(parent).Core().PhaseId != phaseId {
				return NewBusinessError("parent version belongs to another phase")
			}
			if err := carryForwardItems[V, I, PV, PI](tx, *parentVersionId, core.ID); err != nil {
				return err
			}
		}

		if err := refreshCounts[V, I, PV, PI](tx, &v); err != nil {
			return err
		}
		if err := createHistory(tx.WithContext(ctx), "*CREATE*", core.ID, PV(&v).Family()+"_version", nil, core, "version created"); err != nil {
			return err
		}
		created = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	config.VersionTransitionsTotal.WithLabelValues(PV(created).Family(), string(VersionStatusDraft)).Inc()
	return created, nil
}

func carryForwardItems[V any, I any, PV VersionPtr[V], PI ItemPtr[I]](tx *gorm.DB, fromVersionId, toVersionId string) error {
	items, err := loadItems[I, PI](tx, fromVersionId)
	if err != nil {
		return err
	}
	for i := range items {
		core := PI(&items[i]).Base()
		if !CarryForwardEligible(core) {
			continue
		}
		cp := items[i]
		cpCore := PI(&cp).Base()
		cpCore.ID = uuid.NewString()
		cpCore.VersionId = toVersionId
		cpCore.CarriedForward = utils.NewTrue()
		// prior decisions stay visible on the copy; submit resets the
		// report owner side before the next review round
		cpCore.Status = DeriveItemStatus(cpCore.TesterDecision, cpCore.OwnerDecision)
		cpCore.CreatedAt = time.Time{}
		cpCore.UpdatedAt = time.Time{}
		if err := tx.Create(&cp).Error; err != nil {
			return err
		}
	}
	return nil
}

// AddVersionItem attaches an item to a draft version. Fails once submitted.
func AddVersionItem[V any, I any, PV VersionPtr[V], PI ItemPtr[I]](ctx context.Context, versionId string, item *I) (*I, error) {

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		version, err := loadVersion[V, PV](tx, versionId)
		if err != nil {
			return err
		}
		if PV(version).Core().Status != VersionStatusDraft {
			return NewBusinessError("items can only be added while the version is a draft")
		}

		core := PI(item).Base()
		core.ID = uuid.NewString()
		core.VersionId = versionId
		core.Status = DeriveItemStatus(core.TesterDecision, core.OwnerDecision)
		if core.CarriedForward == nil {
			core.CarriedForward = utils.NewFalse()
		}
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return refreshCounts[V, I, PV, PI](tx, version)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateVersionItem applies column updates to a draft item.
func UpdateVersionItem[V any, I any, PV VersionPtr[V], PI ItemPtr[I]](ctx context.Context, itemId string, updates map[string]interface{}) (*I, error) {

	db := config.GetDB()
	var out *I
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item I
		if err := tx.Where("id = ?", itemId).First(&item).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		version, err := loadVersion[V, PV](tx, PI(&item).Base().VersionId)
		if err != nil {
			return err
		}
		if PV(version).Core().Status != VersionStatusDraft {
			return NewBusinessError("items can only be changed while the version is a draft")
		}
		if err := tx.Model(&item).Updates(updates).Error; err != nil {
			return err
		}
		out = &item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteVersionItem removes a draft item.
func DeleteVersionItem[V any, I any, PV VersionPtr[V], PI ItemPtr[I]](ctx context.Context, itemId string) error {

	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item I
		if err := tx.Where("id = ?", itemId).First(&item).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		version, err := loadVersion[V, PV](tx, PI(&item).Base().VersionId)
		if err != nil {
			return err
		}
		if PV(version).Core().Status != VersionStatusDraft {
			return NewBusinessError("items can only be removed while the version is a draft")
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		return refreshCounts[V, I, PV, PI](tx, version)
	})
}

// SubmitVersionForApproval moves a draft to Pending Approval.
// Requires at least one item; clears every item's report-owner decision so
// the new review round starts clean. Only one version per phase may be in
// flight, so an existing pending version blocks the submit.
func SubmitVersionForApproval[V any, I any, PV VersionPtr[V], PI ItemPtr[I]](ctx context.Context, versionId string, notes string) (*V, error) {

	userId, _ := utils.GetUserIdFromContext(ctx)
	db := config.GetDB()
	var out *V
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		version, err := loadVersion[V, PV](tx, versionId)
		if err != nil {
			return err
		}
		core := PV(version).Core()
		if !CanTransition(core.Status, VersionStatusPendingApproval) {
			return NewBusinessError("only draft versions can be submitted for approval")
		}
		if core.TotalItems == 0 {
			return NewBusinessError("cannot submit a version with no items")
		}

		var pending int64
		if err := tx.Model(PV(new(V))).
			Where("phase_id = ? AND status = ? AND id <> ?", core.PhaseId, VersionStatusPendingApproval, versionId).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return NewBusinessError("another version of this phase is already pending approval")
		}

		// reset report-owner decisions on all items
		if err := tx.Model(PI(new(I))).Where("version_id = ?", versionId).Updates(map[string]interface{}{
			"OwnerDecision": nil,
			"OwnerUserId":   nil,
			"OwnerAt":       nil,
		}).Error; err != nil {
			return err
		}
		items, err := loadItems[I, PI](tx, versionId)
		if err != nil {
			return err
		}
		for i := range items {
			c := PI(&items[i]).Base()
			status := DeriveItemStatus(c.TesterDecision, nil)
			if err := tx.Model(&items[i]).Updates(map[string]interface{}{"Status": status}).Error; err != nil {
				return err
			}
		}

		before := core.Status
		now := time.Now()
		if err := tx.Model(version).Updates(map[string]interface{}{
			"Status":          VersionStatusPendingApproval,
			"SubmittedBy":     userId,
			"SubmittedAt":     now,
			"SubmissionNotes": notes,
		}).Error; err != nil {
			return err
		}
		core.Status = VersionStatusPendingApproval
		if err := refreshCounts[V, I, PV, PI](tx, version); err != nil {
			return err
		}
		if err := createHistory(tx.WithContext(ctx), "*SUBMIT*", core.ID, PV(version).Family()+"_version", before, core.Status, "version submitted for approval"); err != nil {
			return err
		}
		out = version
		return nil
	})
	if err != nil {
		return nil, err
	}
	config.VersionTransitionsTotal.WithLabelValues(PV(out).Family(), string(VersionStatusPendingApproval)).Inc()
	return out, nil
}

// RecordItemDecision stores one side of the dual decision and recomputes the
// item's status. When the report owner records the last missing decision the
// version auto-finalizes: Approved when nothing is rejected, Rejected
// otherwise.
func RecordItemDecision[V any, I any, PV VersionPtr[V], PI ItemPtr[I]](ctx context.Context, itemId string, decider DeciderRole, decision Decision, notes string) (*I, error) {

	if !decision.Valid() {
		return nil, NewBusinessError("decision must be Approved or Rejected")
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	db := config.GetDB()
	var out *I
	var finalized VersionStatus
	var family string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item I
		if err := tx.Where("id = ?", itemId).First(&item).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		core := PI(&item).Base()
		version, err := loadVersion[V, PV](tx, core.VersionId)
		if err != nil {
			return err
		}
		vCore := PV(version).Core()
		if vCore.Status != VersionStatusPendingApproval {
			return NewBusinessError("decisions can only be recorded on a version pending approval")
		}

		now := time.Now()
		updates := map[string]interface{}{}
		switch decider {
		case DeciderTester:
			core.TesterDecision = &decision
			updates["TesterDecision"] = decision
			updates["TesterUserId"] = userId
			updates["TesterAt"] = now
			updates["TesterNotes"] = notes
		case DeciderReportOwner:
			core.OwnerDecision = &decision
			updates["OwnerDecision"] = decision
			updates["OwnerUserId"] = userId
			updates["OwnerAt"] = now
			updates["OwnerNotes"] = notes
		default:
			return NewBusinessError("invalid decider role")
		}
		status := DeriveItemStatus(core.TesterDecision, core.OwnerDecision)
		core.Status = status
		updates["Status"] = status
		if err := tx.Model(&item).Updates(updates).Error; err != nil {
			return err
		}
		if err := refreshCounts[V, I, PV, PI](tx, version); err != nil {
			return err
		}

		items, err := loadItems[I, PI](tx, vCore.ID)
		if err != nil {
			return err
		}
		if AllDecided(itemCores[I, PI](items)) {
			if vCore.RejectedItems > 0 {
				finalized = VersionStatusRejected
				if err := finalizeRejection[V, PV](tx, ctx, version, "items rejected during review"); err != nil {
					return err
				}
			} else {
				finalized = VersionStatusApproved
				if err := finalizeApproval[V, PV](tx, ctx, version, "all items approved"); err != nil {
					return err
				}
			}
		}
		family = PV(version).Family()
		out = &item
		return nil
	})
	if err != nil {
		return nil, err
	}
	if finalized != "" {
		config.VersionTransitionsTotal.WithLabelValues(family, string(finalized)).Inc()
	}
	return out, nil
}

// finalizeApproval flips the version to Approved, supersedes earlier approved
// versions of the phase, and queues the approval signal on the outbox within
// the same transaction.
func finalizeApproval[V any, PV VersionPtr[V]](tx *gorm.DB, ctx context.Context, version *V, notes string) error {
	core := PV(version).Core()
	if !CanTransition(core.Status, VersionStatusApproved) {
		return NewBusinessError("version cannot be approved from status " + string(core.Status))
	}
	userId, _ := utils.GetUserIdFromContext(ctx)
	now := time.Now()

	if err := tx.Model(PV(new(V))).
		Where("phase_id = ? AND status = ? AND id <> ?", core.PhaseId, VersionStatusApproved, core.ID).
		Updates(map[string]interface{}{"Status": VersionStatusSuperseded}).Error; err != nil {
		return err
	}
	if err := tx.Model(version).Updates(map[string]interface{}{
		"Status":        VersionStatusApproved,
		"ApprovedBy":    userId,
		"ApprovedAt":    now,
		"ApprovalNotes": notes,
	}).Error; err != nil {
		return err
	}
	before := core.Status
	core.Status = VersionStatusApproved

	payload, _ := json.Marshal(map[string]interface{}{
		"version_id":     core.ID,
		"version_number": core.VersionNumber,
		"family":         PV(version).Family(),
	})
	if err := EnqueueWorkflowEvent(tx, core.PhaseId, SignalApproval, payload); err != nil {
		return err
	}
	return createHistory(tx.WithContext(ctx), "*APPROVE*", core.ID, PV(version).Family()+"_version", before, core.Status, "version approved")
}

func finalizeRejection[V any, PV VersionPtr[V]](tx *gorm.DB, ctx context.Context, version *V, reason string) error {
	core := PV(version).Core()
	if !CanTransition(core.Status, VersionStatusRejected) {
		return NewBusinessError("version cannot be rejected from status " + string(core.Status))
	}
	if err := tx.Model(version).Updates(map[string]interface{}{
		"Status":          VersionStatusRejected,
		"RejectionReason": reason,
	}).Error; err != nil {
		return err
	}
	before := core.Status
	core.Status = VersionStatusRejected
	core.RejectionReason = reason

	payload, _ := json.Marshal(map[string]interface{}{
		"version_id": core.ID,
		"family":     PV(version).Family(),
		"reason":     reason,
	})
	if err := EnqueueWorkflowEvent(tx, core.PhaseId, SignalRevision, payload); err != nil {
		return err
	}
	return createHistory(tx.WithContext(ctx), "*REJECT*", core.ID, PV(version).Family()+"_version", before, core.Status, "version rejected")
}

// ApproveVersion is the explicit report-owner action on the whole version.
func ApproveVersion[V any, I any, PV VersionPtr[V], PI ItemPtr[I]](ctx context.Context, versionId string, notes string) (*V, error) {

	db := config.GetDB()
	var out *V
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		version, err := loadVersion[V, PV](tx, versionId)
		if err != nil {
			return err
		}
		if err := finalizeApproval[V, PV](tx, ctx, version, notes); err != nil {
			return err
		}
		out = version
		return nil
	})
	if err != nil {
		return nil, err
	}
	config.VersionTransitionsTotal.WithLabelValues(PV(out).Family(), string(VersionStatusApproved)).Inc()
	return out, nil
}

// RejectVersion is the explicit report-owner rejection of the whole version.
func RejectVersion[V any, I any, PV VersionPtr[V], PI ItemPtr[I]](ctx context.Context, versionId string, reason string) (*V, error) {

	if reason == "" {
		return nil, NewBusinessError("rejection reason is required")
	}
	db := config.GetDB()
	var out *V
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		version, err := loadVersion[V, PV](tx, versionId)
		if err != nil {
			return err
		}
		if err := finalizeRejection[V, PV](tx, ctx, version, reason); err != nil {
			return err
		}
		out = version
		return nil
	})
	if err != nil {
		return nil, err
	}
	config.VersionTransitionsTotal.WithLabelValues(PV(out).Family(), string(VersionStatusRejected)).Inc()
	return out, nil
}

// ResubmitAfterFeedback opens a new draft from a rejected review round,
// carrying forward only the items the tester approved and the report owner
// did not reject. The source version is superseded.
func ResubmitAfterFeedback[V any, I any, PV VersionPtr[V], PI ItemPtr[I]](ctx context.Context, versionId string) (*V, error) {

	db := config.GetDB()
	var out *V
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		source, err := loadVersion[V, PV](tx, versionId)
		if err != nil {
			return err
		}
		srcCore := PV(source).Core()
		if srcCore.Status != VersionStatusRejected && srcCore.RejectedItems == 0 {
			return NewBusinessError("resubmit requires report-owner rejections on the version")
		}

		var maxNumber int
		if err := tx.Model(PV(new(V))).Where("phase_id = ?", srcCore.PhaseId).
			Select("COALESCE(MAX(version_number), 0)").Scan(&maxNumber).Error; err != nil {
			return err
		}

		var v V
		core := PV(&v).Core()
		core.ID = uuid.NewString()
		core.PhaseId = srcCore.PhaseId
		core.VersionNumber = maxNumber + 1
		core.Status = VersionStatusDraft
		core.ParentVersionId = &srcCore.ID
		if err := tx.Create(&v).Error; err != nil {
			return err
		}
		if err := carryForwardItems[V, I, PV, PI](tx, srcCore.ID, core.ID); err != nil {
			return err
		}
		if err := refreshCounts[V, I, PV, PI](tx, &v); err != nil {
			return err
		}

		if err := tx.Model(source).Updates(map[string]interface{}{
			"Status": VersionStatusSuperseded,
		}).Error; err != nil {
			return err
		}
		if err := createHistory(tx.WithContext(ctx), "*RESUBMIT*", core.ID, PV(&v).Family()+"_version", srcCore.ID, core.ID, "new draft created from feedback"); err != nil {
			return err
		}
		out = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	config.VersionTransitionsTotal.WithLabelValues(PV(out).Family(), string(VersionStatusDraft)).Inc()
	return out, nil
}

func GetVersion[V any, PV VersionPtr[V]](ctx context.Context, versionId string) (*V, error) {
	return utils.FetchModelByUUID[V](ctx, versionId)
}

func ListVersions[V any, PV VersionPtr[V]](ctx context.Context, phaseId int) ([]*V, error) {
	db := config.GetDB()
	var versions []*V
	if err := db.WithContext(ctx).Where("phase_id = ?", phaseId).
		Order("version_number DESC").Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

// GetCurrentVersion returns the phase's working version: the pending one when
// a review round is open, otherwise the approved one.
func GetCurrentVersion[V any, PV VersionPtr[V]](ctx context.Context, phaseId int) (*V, error) {
	db := config.GetDB()
	var v V
	err := db.WithContext(ctx).
		Where("phase_id = ? AND status IN ?", phaseId, []VersionStatus{VersionStatusPendingApproval, VersionStatusApproved}).
		Order("CASE status WHEN 'Pending Approval' THEN 0 ELSE 1 END").
		First(&v).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &v, nil
}

func ListVersionItems[I any, PI ItemPtr[I]](ctx context.Context, versionId string) ([]*I, error) {
	db := config.GetDB()
	var items []*I
	if err := db.WithContext(ctx).Where("version_id = ?", versionId).
		Order("created_at").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
