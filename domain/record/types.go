package record

/*
RawRow 是原始 CSV 中的一行，描述一个 (paper, author, citation) 三元组，所有字段均为原始字符串。
*/
type RawRow struct {
	PaperID        string
	Title          string
	Year           string
	DOI            string
	AuthorID       string
	AuthorName     string
	MainAuthor     string
	VenueName      string
	VenueID        string
	VenueType      string
	Topics         string
	Volume         string
	CitedPaperID   string
	CitedPaperName string
	Abstract       string
}

type VenueKind string

const (
	VenueConference VenueKind = "conference"
	VenueJournal    VenueKind = "journal"
	VenueWorkshop   VenueKind = "workshop"
	VenueOther      VenueKind = "other"
)

// VenueKinds 是会生成 Venue 实体的三种类型，顺序固定。
var VenueKinds = []VenueKind{VenueConference, VenueJournal, VenueWorkshop}

func (k VenueKind) HasVenueEntity() bool {
	return k == VenueConference || k == VenueJournal || k == VenueWorkshop
}

/*
Row 是规范化之后的一行。

	Year 缺失或无法解析时为 0；
	Volume 为 nil 表示无数据；
	Topics 永远不为 nil；
	CitedPaperID 为空表示该行没有引用；
*/
type Row struct {
	PaperID        string
	Title          string
	Year           int
	DOI            string
	Abstract       string
	AuthorID       string
	AuthorName     string
	MainAuthor     bool
	VenueName      string
	VenueID        string
	VenueKind      VenueKind
	Topics         []string
	Volume         *int
	CitedPaperID   string
	CitedPaperName string
}
