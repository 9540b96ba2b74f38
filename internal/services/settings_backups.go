package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/carehub/storefront/internal/models"
	apperrors "github.com/carehub/storefront/pkg/errors"
	"github.com/carehub/storefront/pkg/metrics"
	"github.com/carehub/storefront/pkg/validator"
)

const snapshotFormat = 1

// ErrBackupNotFound indicates the requested backup does not exist.
var ErrBackupNotFound = apperrors.New("BACKUP_NOT_FOUND", "Backup not found", http.StatusNotFound)

// CreateBackupInput describes a manual backup.
type CreateBackupInput struct {
	Name string `json:"name" validate:"max=120"`
	Note string `json:"note" validate:"max=500"`
}

// BackupSchedule controls automatic backups.
type BackupSchedule struct {
	Enabled   bool       `json:"enabled"`
	Spec      string     `json:"spec" validate:"required,cronspec"`
	Retention int        `json:"retention" validate:"gte=1,lte=365"`
	LastRunAt *time.Time `json:"last_run_at"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
}

// UpdateBackupScheduleInput enumerates mutable schedule fields; nil fields are left unchanged.
type UpdateBackupScheduleInput struct {
	Enabled   *bool   `json:"enabled"`
	Spec      *string `json:"spec" validate:"omitempty,cronspec"`
	Retention *int    `json:"retention" validate:"omitempty,gte=1,lte=365"`
}

// DefaultBackupSchedule is served before a schedule is saved.
func DefaultBackupSchedule() BackupSchedule {
	return BackupSchedule{Enabled: true, Spec: "0 3 * * *", Retention: 7}
}

type settingsSnapshot struct {
	Format    int                       `json:"format"`
	TakenAt   time.Time                 `json:"taken_at"`
	Documents []models.SettingsDocument `json:"documents"`
	Roles     []snapshotRole            `json:"roles"`
	Users     []snapshotUser            `json:"users"`
}

type snapshotRole struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsSystem    bool      `json:"is_system"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

type snapshotUser struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"password_hash"`
	FullName           string     `json:"full_name"`
	Phone              string     `json:"phone"`
	Status             string     `json:"status"`
	RoleID             *string    `json:"role_id"`
	MustChangePassword bool       `json:"must_change_password"`
	PasswordChangedAt  *time.Time `json:"password_changed_at"`
	LastLoginAt        *time.Time `json:"last_login_at"`
	CreatedAt          time.Time  `json:"created_at"`
}

// ListBackups returns backups newest first.
func (s *SettingsService) ListBackups(ctx context.Context) ([]models.Backup, error) {
	ctx = ensureContext(ctx)

	var backups []models.Backup
	if err := s.db.WithContext(ctx).Omit("snapshot").Order("created_at DESC").Find(&backups).Error; err != nil {
		return nil, fmt.Errorf("settings service: list backups: %w", err)
	}
	return backups, nil
}

// GetBackup loads backup metadata.
func (s *SettingsService) GetBackup(ctx context.Context, id string) (*models.Backup, error) {
	ctx = ensureContext(ctx)

	var backup models.Backup
	err := s.db.WithContext(ctx).First(&backup, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBackupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("settings service: get backup: %w", err)
	}
	return &backup, nil
}

// CreateBackup snapshots users, roles and settings documents. The backup
// schedule itself is not part of the snapshot.
func (s *SettingsService) CreateBackup(ctx context.Context, input CreateBackupInput, trigger string) (*models.Backup, error) {
	ctx = ensureContext(ctx)

	if err := validator.ValidateStruct(input); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}
	if trigger == "" {
		trigger = models.BackupTriggerManual
	}

	backup, err := s.createBackup(ctx, input, trigger)
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.Backups.WithLabelValues(trigger, result).Inc()
	return backup, err
}

func (s *SettingsService) createBackup(ctx context.Context, input CreateBackupInput, trigger string) (*models.Backup, error) {
	snapshot, err := s.takeSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("settings service: encode snapshot: %w", err)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "Backup " + snapshot.TakenAt.Format("2006-01-02 15:04:05")
	}

	backup := &models.Backup{
		Name:      name,
		Note:      strings.TrimSpace(input.Note),
		Trigger:   trigger,
		Status:    models.BackupStatusCompleted,
		SizeBytes: int64(len(raw)),
		Snapshot:  datatypes.JSON(raw),
	}
	if err := s.db.WithContext(ctx).Create(backup).Error; err != nil {
		return nil, fmt.Errorf("settings service: create backup: %w", err)
	}

	s.log.Info("backup created",
		zap.String("backup_id", backup.ID),
		zap.String("trigger", trigger),
		zap.Int64("size_bytes", backup.SizeBytes),
	)
	return backup, nil
}

func (s *SettingsService) takeSnapshot(ctx context.Context) (*settingsSnapshot, error) {
	snapshot := &settingsSnapshot{Format: snapshotFormat, TakenAt: s.now().UTC()}
	db := s.db.WithContext(ctx)

	if err := db.Not(map[string]any{"key": models.SettingsBackupSchedule}).
		Find(&snapshot.Documents).Error; err != nil {
		return nil, fmt.Errorf("settings service: snapshot documents: %w", err)
	}
	sort.Slice(snapshot.Documents, func(i, j int) bool {
		return snapshot.Documents[i].Key < snapshot.Documents[j].Key
	})

	var roles []models.Role
	if err := db.Preload("Permissions").Order("id ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("settings service: snapshot roles: %w", err)
	}
	for _, role := range roles {
		ids := make([]string, 0, len(role.Permissions))
		for _, p := range role.Permissions {
			ids = append(ids, p.ID)
		}
		snapshot.Roles = append(snapshot.Roles, snapshotRole{
			ID:          role.ID,
			Name:        role.Name,
			Description: role.Description,
			IsSystem:    role.IsSystem,
			Permissions: ids,
			CreatedAt:   role.CreatedAt,
		})
	}

	var users []models.User
	if err := db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("settings service: snapshot users: %w", err)
	}
	for _, u := range users {
		snapshot.Users = append(snapshot.Users, snapshotUser{
			ID:                 u.ID,
			Username:           u.Username,
			Email:              u.Email,
			PasswordHash:       u.Password,
			FullName:           u.FullName,
			Phone:              u.Phone,
			Status:             u.Status,
			RoleID:             u.RoleID,
			MustChangePassword: u.MustChangePassword,
			PasswordChangedAt:  u.PasswordChangedAt,
			LastLoginAt:        u.LastLoginAt,
			CreatedAt:          u.CreatedAt,
		})
	}
	return snapshot, nil
}

// RestoreBackup replaces users, roles and settings documents with the
// backup's snapshot in a single transaction.
func (s *SettingsService) RestoreBackup(ctx context.Context, id string) (*models.Backup, error) {
	ctx = ensureContext(ctx)

	backup, err := s.GetBackup(ctx, id)
	if err != nil {
		return nil, err
	}

	var snapshot settingsSnapshot
	if err := json.Unmarshal(backup.Snapshot, &snapshot); err != nil {
		return nil, apperrors.NewBadRequest("backup snapshot is corrupt").WithInternal(err)
	}
	if snapshot.Format != snapshotFormat {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unsupported backup format %d", snapshot.Format))
	}

	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearSettingsTables(tx); err != nil {
			return err
		}
		if err := restoreRoles(tx, snapshot.Roles); err != nil {
			return err
		}
		if err := restoreUsers(tx, snapshot.Users); err != nil {
			return err
		}
		for _, doc := range snapshot.Documents {
			if err := tx.Create(&models.SettingsDocument{Key: doc.Key, Value: doc.Value}).Error; err != nil {
				return fmt.Errorf("restore document %s: %w", doc.Key, err)
			}
		}
		return tx.Model(&models.Backup{}).Where("id = ?", id).Updates(map[string]any{
			"status":      models.BackupStatusRestored,
			"restored_at": now,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("settings service: restore backup: %w", err)
	}

	if _, err := s.cache.Flush(ctx); err != nil {
		s.log.Warn("flush cache after restore failed", zap.Error(err))
	}
	s.log.Warn("backup restored",
		zap.String("backup_id", id),
		zap.Int("users", len(snapshot.Users)),
		zap.Int("roles", len(snapshot.Roles)),
	)
	return s.GetBackup(ctx, id)
}

func clearSettingsTables(tx *gorm.DB) error {
	global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := global.Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	if err := tx.Exec("DELETE FROM role_permissions").Error; err != nil {
		return fmt.Errorf("clear role permissions: %w", err)
	}
	if err := global.Delete(&models.Role{}).Error; err != nil {
		return fmt.Errorf("clear roles: %w", err)
	}
	if err := tx.Not(map[string]any{"key": models.SettingsBackupSchedule}).Delete(&models.SettingsDocument{}).Error; err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	return nil
}

func restoreRoles(tx *gorm.DB, roles []snapshotRole) error {
	for _, r := range roles {
		role := models.Role{
			BaseModel:   models.BaseModel{ID: r.ID, CreatedAt: r.CreatedAt},
			Name:        r.Name,
			Description: r.Description,
			IsSystem:    r.IsSystem,
		}
		if err := tx.Create(&role).Error; err != nil {
			return fmt.Errorf("restore role %s: %w", r.ID, err)
		}

		ids := normaliseIDs(r.Permissions)
		if len(ids) == 0 {
			continue
		}
		// Permissions dropped from the catalog since the backup are skipped.
		var perms []models.Permission
		if err := tx.Where("id IN ?", ids).Find(&perms).Error; err != nil {
			return fmt.Errorf("restore role %s permissions: %w", r.ID, err)
		}
		if len(perms) == 0 {
			continue
		}
		if err := tx.Model(&role).Association("Permissions").Append(perms); err != nil {
			return fmt.Errorf("restore role %s permissions: %w", r.ID, err)
		}
	}
	return nil
}

func restoreUsers(tx *gorm.DB, users []snapshotUser) error {
	for _, u := range users {
		user := models.User{
			BaseModel:          models.BaseModel{ID: u.ID, CreatedAt: u.CreatedAt},
			Username:           u.Username,
			Email:              u.Email,
			Password:           u.PasswordHash,
			FullName:           u.FullName,
			Phone:              u.Phone,
			Status:             u.Status,
			RoleID:             u.RoleID,
			MustChangePassword: u.MustChangePassword,
			PasswordChangedAt:  u.PasswordChangedAt,
			LastLoginAt:        u.LastLoginAt,
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("restore user %s: %w", u.Username, err)
		}
	}
	return nil
}

// DeleteBackup removes a backup.
func (s *SettingsService) DeleteBackup(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.Backup{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("settings service: delete backup: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBackupNotFound
	}
	s.log.Info("backup deleted", zap.String("backup_id", id))
	return nil
}

// PruneBackups deletes scheduled backups beyond the newest keep. Manual
// backups are never pruned.
func (s *SettingsService) PruneBackups(ctx context.Context, keep int) (int64, error) {
	ctx = ensureContext(ctx)
	if keep < 1 {
		keep = 1
	}

	var stale []string
	if err := s.db.WithContext(ctx).Model(&models.Backup{}).
		Where(map[string]any{"trigger": models.BackupTriggerScheduled}).
		Order("created_at DESC").
		Offset(keep).
		Pluck("id", &stale).Error; err != nil {
		return 0, fmt.Errorf("settings service: find stale backups: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	result := s.db.WithContext(ctx).Where("id IN ?", stale).Delete(&models.Backup{})
	if result.Error != nil {
		return 0, fmt.Errorf("settings service: prune backups: %w", result.Error)
	}
	s.log.Info("backups pruned", zap.Int64("count", result.RowsAffected), zap.Int("keep", keep))
	return result.RowsAffected, nil
}

// GetBackupSchedule returns the schedule with its next run time.
func (s *SettingsService) GetBackupSchedule(ctx context.Context) (BackupSchedule, error) {
	ctx = ensureContext(ctx)

	var schedule BackupSchedule
	if err := s.loadDocument(ctx, models.SettingsBackupSchedule, &schedule, func() any { return DefaultBackupSchedule() }); err != nil {
		return BackupSchedule{}, err
	}
	schedule.NextRunAt = s.nextRun(schedule)
	return schedule, nil
}

// UpdateBackupSchedule changes the schedule and notifies the scheduler.
func (s *SettingsService) UpdateBackupSchedule(ctx context.Context, input UpdateBackupScheduleInput) (BackupSchedule, error) {
	ctx = ensureContext(ctx)

	if input.Spec != nil {
		spec := strings.TrimSpace(*input.Spec)
		input.Spec = &spec
	}
	if err := validator.ValidateStruct(input); err != nil {
		return BackupSchedule{}, apperrors.NewBadRequest(err.Error())
	}

	schedule, err := s.GetBackupSchedule(ctx)
	if err != nil {
		return BackupSchedule{}, err
	}
	if input.Enabled != nil {
		schedule.Enabled = *input.Enabled
	}
	if input.Spec != nil {
		schedule.Spec = *input.Spec
	}
	if input.Retention != nil {
		schedule.Retention = *input.Retention
	}
	if err := validator.ValidateStruct(schedule); err != nil {
		return BackupSchedule{}, apperrors.NewBadRequest(err.Error())
	}

	schedule.NextRunAt = nil
	if err := s.storeDocument(ctx, models.SettingsBackupSchedule, schedule); err != nil {
		return BackupSchedule{}, err
	}
	schedule.NextRunAt = s.nextRun(schedule)

	s.log.Info("backup schedule updated",
		zap.Bool("enabled", schedule.Enabled),
		zap.String("spec", schedule.Spec),
		zap.Int("retention", schedule.Retention),
	)
	if s.onSchedule != nil {
		s.onSchedule(schedule)
	}
	return schedule, nil
}

// RecordBackupRun stores the time of the latest scheduled run.
func (s *SettingsService) RecordBackupRun(ctx context.Context, at time.Time) error {
	ctx = ensureContext(ctx)

	schedule, err := s.GetBackupSchedule(ctx)
	if err != nil {
		return err
	}
	at = at.UTC()
	schedule.LastRunAt = &at
	schedule.NextRunAt = nil
	return s.storeDocument(ctx, models.SettingsBackupSchedule, schedule)
}

func (s *SettingsService) nextRun(schedule BackupSchedule) *time.Time {
	if !schedule.Enabled {
		return nil
	}
	sched, err := cron.ParseStandard(schedule.Spec)
	if err != nil {
		return nil
	}
	next := sched.Next(s.now()).UTC()
	return &next
}
