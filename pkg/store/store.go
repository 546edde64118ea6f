/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

// Package store keeps every saved version of every log config in a local sqlite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logger"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"sort"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("log config not found")
	ErrVersionConflict = errors.New("log config was modified by someone else")
)

type (
	// LogConfigDO is one version of a log config. The config itself is kept as JSON in Body,
	// the other columns exist for lookups.
	LogConfigDO struct {
		ID          int64 `gorm:"primarykey"`
		GmtCreate   time.Time
		GmtModified time.Time
		ConfigID    string `gorm:"uniqueIndex:idx_config_version;not null;"`
		Version     int    `gorm:"uniqueIndex:idx_config_version;not null;"`
		Name        string `gorm:"index;"`
		LogType     string `gorm:""`
		Body        []byte `gorm:""`
	}

	Storage struct {
		db  *gorm.DB
		now func() time.Time
	}
)

func (LogConfigDO) TableName() string {
	return "log_config"
}

// NewStorage opens the sqlite database at path. All statements share one connection.
func NewStorage(path string) (*Storage, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&LogConfigDO{}); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return &Storage{db: db, now: time.Now}, nil
}

func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Create validates cfg and saves it as version 1 under a new id.
func (s *Storage) Create(ctx context.Context, cfg *logconfig.LogConfig) (*logconfig.LogConfig, error) {
	x := cfg.Clone()
	x.Normalize()
	if err := x.Validate(); err != nil {
		return nil, err
	}
	x.ID = uuid.NewString()
	x.Version = 1
	x.CreatedAt = s.now()
	do, err := toDO(x)
	if err != nil {
		return nil, err
	}
	if r := s.db.WithContext(ctx).Create(do); r.Error != nil {
		return nil, errors.Wrapf(r.Error, "create log config %s", x.Name)
	}
	logger.Infoz("[store] create", zap.String("id", x.ID), zap.String("name", x.Name))
	return x, nil
}

// Update saves cfg as a new version. cfg.Version must be the latest stored version,
// otherwise ErrVersionConflict is returned. Older versions stay readable.
func (s *Storage) Update(ctx context.Context, cfg *logconfig.LogConfig) (*logconfig.LogConfig, error) {
	x := cfg.Clone()
	x.Normalize()
	if err := x.Validate(); err != nil {
		return nil, err
	}
	var next *logconfig.LogConfig
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		latest, err := latestDO(tx, x.ID)
		if err != nil {
			return err
		}
		if latest.Version != x.Version {
			return errors.Wrapf(ErrVersionConflict, "id=[%s] latest=[%d] given=[%d]", x.ID, latest.Version, x.Version)
		}
		prev, err := fromDO(latest)
		if err != nil {
			return err
		}
		next = x.NextVersion()
		next.CreatedAt = prev.CreatedAt
		do, err := toDO(next)
		if err != nil {
			return err
		}
		if err := tx.Create(do).Error; err != nil {
			if isUniqueViolation(err) {
				return errors.Wrapf(ErrVersionConflict, "id=[%s] version=[%d] already exists", next.ID, next.Version)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infoz("[store] update", zap.String("id", next.ID), zap.Int("version", next.Version))
	return next, nil
}

// Get returns the latest version of id.
func (s *Storage) Get(ctx context.Context, id string) (*logconfig.LogConfig, error) {
	do, err := latestDO(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return fromDO(do)
}

func (s *Storage) GetVersion(ctx context.Context, id string, version int) (*logconfig.LogConfig, error) {
	var do LogConfigDO
	r := s.db.WithContext(ctx).Where("config_id = ? AND version = ?", id, version).Take(&do)
	if errors.Is(r.Error, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "id=[%s] version=[%d]", id, version)
	}
	if r.Error != nil {
		return nil, r.Error
	}
	return fromDO(&do)
}

// ListVersions returns every version of id, oldest first.
func (s *Storage) ListVersions(ctx context.Context, id string) ([]*logconfig.LogConfig, error) {
	var dos []*LogConfigDO
	if r := s.db.WithContext(ctx).Where("config_id = ?", id).Order("version").Find(&dos); r.Error != nil {
		return nil, r.Error
	}
	if len(dos) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "id=[%s]", id)
	}
	return fromDOs(dos)
}

// List returns the latest version of every config, oldest config first.
func (s *Storage) List(ctx context.Context) ([]*logconfig.LogConfig, error) {
	var dos []*LogConfigDO
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		latest := tx.Model(&LogConfigDO{}).Select("config_id, MAX(version)").Group("config_id")
		return tx.Where("(config_id, version) IN (?)", latest).Order("id").Find(&dos).Error
	}, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	cfgs, err := fromDOs(dos)
	if err != nil {
		return nil, err
	}
	// versions are inserted after their config, so order by the first version instead
	sortByCreated(cfgs)
	return cfgs, nil
}

// Delete removes every version of id.
func (s *Storage) Delete(ctx context.Context, id string) error {
	r := s.db.WithContext(ctx).Where("config_id = ?", id).Delete(&LogConfigDO{})
	if r.Error != nil {
		return r.Error
	}
	if r.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "id=[%s]", id)
	}
	logger.Infoz("[store] delete", zap.String("id", id), zap.Int64("versions", r.RowsAffected))
	return nil
}

func latestDO(tx *gorm.DB, id string) (*LogConfigDO, error) {
	var do LogConfigDO
	r := tx.Where("config_id = ?", id).Order("version DESC").Take(&do)
	if errors.Is(r.Error, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "id=[%s]", id)
	}
	if r.Error != nil {
		return nil, r.Error
	}
	return &do, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func toDO(cfg *logconfig.LogConfig) (*LogConfigDO, error) {
	body, err := json.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "encode log config")
	}
	now := time.Now()
	return &LogConfigDO{
		GmtCreate:   now,
		GmtModified: now,
		ConfigID:    cfg.ID,
		Version:     cfg.Version,
		Name:        cfg.Name,
		LogType:     string(cfg.LogType),
		Body:        body,
	}, nil
}

func fromDO(do *LogConfigDO) (*logconfig.LogConfig, error) {
	cfg := &logconfig.LogConfig{}
	if err := json.Unmarshal(do.Body, cfg); err != nil {
		return nil, errors.Wrapf(err, "decode log config id=[%s] version=[%d]", do.ConfigID, do.Version)
	}
	return cfg, nil
}

func fromDOs(dos []*LogConfigDO) ([]*logconfig.LogConfig, error) {
	ret := make([]*logconfig.LogConfig, 0, len(dos))
	for _, do := range dos {
		cfg, err := fromDO(do)
		if err != nil {
			return nil, err
		}
		ret = append(ret, cfg)
	}
	return ret, nil
}

func sortByCreated(cfgs []*logconfig.LogConfig) {
	sort.SliceStable(cfgs, func(i, j int) bool {
		return cfgs[i].CreatedAt.Before(cfgs[j].CreatedAt)
	})
}
