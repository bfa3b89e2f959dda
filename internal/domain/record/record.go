// Package record holds search results projected back into catalog records.
package record

import "github.com/kailas-cloud/mdsearch/internal/domain/search/mode"

// Field is one emitted element of a dumped record.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Info is the fixed metadata block attached to every record.
type Info struct {
	ID         string   `json:"id"`
	UUID       string   `json:"uuid,omitempty"`
	Schema     string   `json:"schema,omitempty"`
	CreateDate string   `json:"createDate,omitempty"`
	ChangeDate string   `json:"changeDate,omitempty"`
	Source     string   `json:"source,omitempty"`
	Categories []string `json:"category,omitempty"`
	Score      *float64 `json:"score,omitempty"`
}

// Record is a projected search hit.
type Record struct {
	Mode   mode.Mode `json:"mode"`
	Fields []Field   `json:"fields,omitempty"`
	Info   Info      `json:"info"`
}

// ID returns the catalog identifier of the record.
func (r *Record) ID() string { return r.Info.ID }

// Values returns every emitted value named name.
func (r *Record) Values(name string) []string {
	var out []string
	for _, f := range r.Fields {
		if f.Name == name {
			out = append(out, f.Value)
		}
	}
	return out
}

// MdInfo is the compact administrative view of an indexed record.
type MdInfo struct {
	ID          string `json:"id"`
	UUID        string `json:"uuid"`
	Root        string `json:"root"`
	Schema      string `json:"schema"`
	CreateDate  string `json:"createDate"`
	ChangeDate  string `json:"changeDate"`
	Source      string `json:"source"`
	IsTemplate  string `json:"isTemplate"`
	Title       string `json:"title"`
	IsHarvested string `json:"isHarvested"`
	Owner       string `json:"owner"`
	GroupOwner  string `json:"groupOwner"`
}

// MdInfoFields lists the stored fields backing MdInfo.
var MdInfoFields = []string{
	"_id", "_root", "_schema", "_createDate", "_changeDate", "_source",
	"_isTemplate", "_title", "_uuid", "_isHarvested", "_owner", "_groupOwner",
}
