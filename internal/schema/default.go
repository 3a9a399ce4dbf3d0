package schema

import "filterbar/internal/filter"

// DefaultYAML describes the demo record set in the store's records table.
const DefaultYAML = `
max_expressions: 8
validate: cel
fields:
  - key: status
    label: Status
    type: enum
    description: Workflow state
    required: true
    strict: true
    operators: [eq, neq]
    values:
      - open
      - value: in_progress
        label: in progress
      - blocked
      - closed
  - key: priority
    label: Priority
    type: number
    description: 0 (critical) to 4 (backlog)
    required: true
    min: 0
    max: 4
    integer: true
  - key: assignee
    label: Assignee
    description: Who owns the record
    operators: [eq, neq, contains, is_empty]
    source:
      table: records
      column: assignee
      swr: true
  - key: label
    label: Label
    type: enum
    description: Record label
    operators: [eq, neq, in]
    source:
      table: records
      column: label
  - key: created
    label: Created
    type: date
    description: Creation date
    operators:
      - eq
      - key: gt
        label: after
      - key: lt
        label: before
  - key: title
    label: Title
    description: Free text title
    operators: [contains, not_contains, starts_with, eq]
    source:
      table: records
      column: title
      paged: true
`

// Default returns the built-in demo schema.
func Default(deps Deps) (*filter.Schema, error) {
	return Parse([]byte(DefaultYAML), deps)
}
