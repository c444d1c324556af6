package request

// Command is the operation a request performs. It is written as the root
// element of the wire document.
type Command string

// Commands understood by the server. Unknown commands are not rejected on
// the client side; the server answers them with an error.
const (
	CmdSearch              Command = "search"
	CmdInsert              Command = "insert"
	CmdUpdate              Command = "update"
	CmdReplace             Command = "replace"
	CmdPartialReplace      Command = "partial-replace"
	CmdDelete              Command = "delete"
	CmdAlternatives        Command = "alternatives"
	CmdListWords           Command = "list-words"
	CmdStatus              Command = "status"
	CmdRetrieve            Command = "retrieve"
	CmdLookup              Command = "lookup"
	CmdListLast            Command = "list-last"
	CmdListFirst           Command = "list-first"
	CmdRetrieveLast        Command = "retrieve-last"
	CmdRetrieveFirst       Command = "retrieve-first"
	CmdSearchDelete        Command = "search-delete"
	CmdListPaths           Command = "list-paths"
	CmdListFacets          Command = "list-facets"
	CmdSimilar             Command = "similar"
	CmdShowHistory         Command = "show-history"
	CmdBeginTransaction    Command = "begin-transaction"
	CmdCommitTransaction   Command = "commit-transaction"
	CmdRollbackTransaction Command = "rollback-transaction"
)

var knownCommands = map[Command]struct{}{
	CmdSearch: {}, CmdInsert: {}, CmdUpdate: {}, CmdReplace: {}, CmdPartialReplace: {},
	CmdDelete: {}, CmdAlternatives: {}, CmdListWords: {}, CmdStatus: {}, CmdRetrieve: {},
	CmdLookup: {}, CmdListLast: {}, CmdListFirst: {}, CmdRetrieveLast: {}, CmdRetrieveFirst: {},
	CmdSearchDelete: {}, CmdListPaths: {}, CmdListFacets: {}, CmdSimilar: {}, CmdShowHistory: {},
	CmdBeginTransaction: {}, CmdCommitTransaction: {}, CmdRollbackTransaction: {},
}

// IsKnown reports whether c is one of the commands defined in this package.
func (c Command) IsKnown() bool {
	_, ok := knownCommands[c]
	return ok
}

func (c Command) String() string { return string(c) }

// Well-known parameter names. Each typed setter owns exactly one of them.
const (
	ParamQuery     = "query"
	ParamOffset    = "offset"
	ParamDocs      = "docs"
	ParamList      = "list"
	ParamPath      = "path"
	ParamCr        = "cr"
	ParamIdif      = "idif"
	ParamH         = "h"
	ParamSQL       = "sql"
	ParamReturnDoc = "return_doc"
	ParamID        = "id"
	ParamText      = "text"
	ParamLen       = "len"
	ParamQuota     = "quota"
)

// Template field names with special meaning in FromTemplate and Apply.
//
// FieldDocumentIDs and FieldDocuments carry the underscore prefix used for
// values that have no typed setter; on the wire the prefix is stripped
// (see TagID and TagDocument).
const (
	FieldCommand     = "command"
	FieldDocumentIDs = "_id"
	FieldDocuments   = "_document"
)

// Wire element names of the overflow fields.
const (
	TagID       = "id"
	TagDocument = "document"
)

// ReturnDocYes is the value of ParamReturnDoc asking for document content.
const ReturnDocYes = "yes"
