package metadata

import (
	"bibgraph-backend/utils"
	"database/sql"
	"errors"
	"gorm.io/gorm"
	"time"
)

var ErrRunNotFound = errors.New("pipeline run not found")

/*
RunRepository 封装了 PipelineRun 及其附属记录的读写。
*/
type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// DefaultRunRepository 使用 Init 创建的全局连接。
func DefaultRunRepository() *RunRepository {
	return NewRunRepository(db)
}

func (r *RunRepository) Create(run *PipelineRun) error {
	run.Status = RunStatusDoing
	if err := r.db.Create(run).Error; err != nil {
		return utils.WrapError(err, "insert pipeline run fail")
	}
	return nil
}

func (r *RunRepository) AddFiles(runID uint, files []File) error {
	if len(files) == 0 {
		return nil
	}
	for i := range files {
		files[i].RunID = utils.UintToPtr(runID)
	}
	if err := r.db.Create(&files).Error; err != nil {
		return utils.WrapErrorf(err, "insert files of run [%d] fail", runID)
	}
	return nil
}

/*
Finish 在一个事务中写入各阶段行数、丢弃计数和报告，并把运行标记为完成。
*/
func (r *RunRepository) Finish(run *PipelineRun, stages []StageCount, dropped []DroppedCount, report *SchemaRunReport) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range stages {
			stages[i].RunID = run.ID
		}
		for i := range dropped {
			dropped[i].RunID = run.ID
		}

		if len(stages) > 0 {
			if err := tx.Create(&stages).Error; err != nil {
				return utils.WrapError(err, "insert stage counts fail")
			}
		}
		if len(dropped) > 0 {
			if err := tx.Create(&dropped).Error; err != nil {
				return utils.WrapError(err, "insert dropped counts fail")
			}
		}

		updates := map[string]interface{}{
			"status":          RunStatusDone,
			"orphaned_papers": run.OrphanedPapers,
			"finished_at":     sql.NullTime{Time: time.Now(), Valid: true},
		}
		if report != nil {
			extra := report.ToExtra()
			updates["extra_type"] = extra.ExtraType
			updates["extra_json"] = extra.ExtraJSON
		}

		if err := tx.Model(run).Updates(updates).Error; err != nil {
			return utils.WrapErrorf(err, "update run [%d] fail", run.ID)
		}
		return nil
	})
}

func (r *RunRepository) Fail(run *PipelineRun, cause error) error {
	err := r.db.Model(run).Updates(map[string]interface{}{
		"status":      RunStatusFail,
		"error":       cause.Error(),
		"finished_at": sql.NullTime{Time: time.Now(), Valid: true},
	}).Error
	if err != nil {
		return utils.WrapErrorf(err, "mark run [%d] fail", run.ID)
	}
	return nil
}

// List 按创建时间倒序返回运行记录，不包含附属记录。
func (r *RunRepository) List(offset, limit int) ([]PipelineRun, int64, error) {
	var total int64
	if err := r.db.Model(&PipelineRun{}).Count(&total).Error; err != nil {
		return nil, 0, utils.WrapError(err, "count runs fail")
	}

	var runs []PipelineRun
	err := r.db.Order("id desc").Offset(offset).Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, 0, utils.WrapError(err, "select runs fail")
	}
	return runs, total, nil
}

func (r *RunRepository) Get(id uint) (*PipelineRun, error) {
	var run PipelineRun
	err := r.db.
		Preload("Stages", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		Preload("Dropped").
		Preload("Files").
		Take(&run, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.WrapErrorf(ErrRunNotFound, "id=[%d]", id)
	}
	if err != nil {
		return nil, utils.WrapErrorf(err, "select run [%d] fail", id)
	}
	return &run, nil
}
