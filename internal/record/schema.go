package record

// ViewIdentity is the stable key naming one table instance, e.g.
// "tasks" or "task-runs". It namespaces both preference
// persistence and polling sessions, so it must be unique across all
// views of the application.
type ViewIdentity string

// Column declares one table column: the record field it reads, the
// header shown to the user, and whether it is visible before any
// stored preference exists.
type Column struct {
	DataSource     string
	Title          string
	DefaultVisible bool
}

// Schema is the ordered column list a view declares at construction
// time. It is authoritative for which fields exist and their default
// visibility.
type Schema []Column

// Column returns the schema entry for the given data source.
func (s Schema) Column(dataSource string) (Column, bool) {
	for _, c := range s {
		if c.DataSource == dataSource {
			return c, true
		}
	}
	return Column{}, false
}
