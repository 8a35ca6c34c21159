package metadata

import (
	"database/sql"
	"gorm.io/gorm"
)

/*
Extra 用于扩展信息，或者保存多态的信息，通过JSON格式。不直接单独作为一个数据库对象，类似gorm.Model。

	ExtraType 标记JSON的schema；
	ExtraJSON 额外信息的JSON主体；
*/
type Extra struct {
	ExtraType sql.NullString `gorm:"type:varchar(16)"`
	ExtraJSON sql.NullString `gorm:"type:text"`
}

//////////////////////////////// 运行信息，每次流水线运行一条 ////////////////////////////////////

/*
PipelineRun 记录了一次流水线运行。

	Extra 运行结束后保存演化与指标阶段的报告，ExtraType 为 ExtraTypeRunReport；
	Desc 运行的描述，一般为输入文件名；
	Status 运行状态；
	DryRun 为 true 时写入进程内的图而不是 neo4j；
	Email 运行结束后通知的邮箱，可以为空；
	Error 失败时的错误信息；
	OrphanedPapers 没有任何发表关系的论文数；

	Stages 多对一关系，各阶段的行数；
	Dropped 多对一关系，各种边因端点无法解析而丢弃的行数；
	Files 多对一关系，输入文件和产出的批次文件；
*/
type PipelineRun struct {
	gorm.Model
	Extra

	Desc           string `gorm:"type:varchar(128)"`
	Status         uint   `gorm:"comment:DOING=1,DONE=2,FAIL=3"`
	DryRun         bool
	Email          string `gorm:"type:varchar(128)"`
	Error          string `gorm:"type:text"`
	OrphanedPapers int
	FinishedAt     sql.NullTime

	Stages  []StageCount   `gorm:"foreignKey:RunID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Dropped []DroppedCount `gorm:"foreignKey:RunID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Files   []File         `gorm:"foreignKey:RunID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

/*
StageCount 记录了某个阶段中某一批次的行数。

	Stage 阶段名，如 normalize、dedup、derive、load；
	Name 批次名，如 nodes_paper、rel_author_of；
	Rows 行数；
*/
type StageCount struct {
	gorm.Model
	RunID uint   `gorm:"index:idx_stage_counts_run"`
	Seq   int    `gorm:"comment:order inside the run"`
	Stage string `gorm:"type:varchar(32) not null"`
	Name  string `gorm:"type:varchar(64) not null"`
	Rows  int
}

/*
DroppedCount 记录了某种边在推导中丢弃的行数。
*/
type DroppedCount struct {
	gorm.Model
	RunID    uint   `gorm:"index:idx_dropped_counts_run"`
	EdgeType string `gorm:"type:varchar(32) not null"`
	Count    int
}

/*
File 记录了文件的元信息。

	Extra 为扩展预留；
	Role 文件的用途，输入或产物；
	Type 文件的类型；
	URL 文件在产物存储中的位置，本地存储为文件路径，S3 为对象键；
	Name 文件名，用于下载文件后的命名；
	Hash 文件的MD5摘要，用于判断重复；

	RunID 一对多关系，产生或使用此文件的运行；
*/
type File struct {
	gorm.Model
	Extra
	Role uint   `gorm:"comment:Input=1,Artifact=2"`
	Type string `gorm:"type:varchar(8) not null"`
	URL  string `gorm:"type:varchar(256)"`
	Name string `gorm:"type:varchar(64)"`
	Hash []byte `gorm:"type:binary(16);index:idx_files_hash"`

	RunID *uint
}
