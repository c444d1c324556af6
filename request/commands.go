package request

// --- Search family ---

// Search creates a search request. query is a query string or an Object.
// Paging and listing policy are added with SetOffset, SetDocs and SetList:
//
//	req := Search("hello world").SetOffset(0).SetDocs(10)
func Search(query any) *Request {
	return New(CmdSearch).SetQuery(query)
}

// SQLSearch creates a search request carrying a literal SQL-like query in
// the sql parameter instead of the query parameter.
func SQLSearch(sql string) *Request {
	return New(CmdSearch).SetParam(ParamSQL, sql)
}

// SearchDelete deletes every document matching query.
func SearchDelete(query any) *Request {
	return New(CmdSearchDelete).SetQuery(query)
}

// --- Modify family ---

// Modify creates a document modification request for cmd (insert, update,
// replace or partial-replace) carrying docs unmodified.
func Modify(cmd Command, docs ...Document) *Request {
	return New(cmd).SetDocuments(docs...)
}

func Insert(docs ...Document) *Request { return Modify(CmdInsert, docs...) }

func Update(docs ...Document) *Request { return Modify(CmdUpdate, docs...) }

func Replace(docs ...Document) *Request { return Modify(CmdReplace, docs...) }

func PartialReplace(docs ...Document) *Request { return Modify(CmdPartialReplace, docs...) }

// Delete removes the documents with the given identifiers.
func Delete(ids ...string) *Request {
	return New(CmdDelete).SetDocumentIDs(ids...)
}

// --- Alternatives ---

// Alternatives asks for spelling alternatives of the terms in query.
// cr is the minimum ratio between the occurrence of the alternative and the
// occurrence of the search term, idif limits how much the alternative may
// differ from the term and h limits the overall quality estimate.
func Alternatives(query any, cr, idif, h float64) *Request {
	return New(CmdAlternatives).
		SetQuery(query).
		SetCr(cr).
		SetIdif(idif).
		SetH(h)
}

// ListWords lists the index words matching the wildcards in query.
func ListWords(query any) *Request {
	return New(CmdListWords).SetQuery(query)
}

// --- Retrieve and lookup ---

func Retrieve(ids ...string) *Request {
	return New(CmdRetrieve).SetDocumentIDs(ids...)
}

// Lookup retrieves the documents with the given identifiers, shaped by the
// listing policy.
func Lookup(ids []string, list Object) *Request {
	return New(CmdLookup).SetDocumentIDs(ids...).SetList(list)
}

// --- Listing and paging family ---

// ListLastRetrieveFirst is the shared shape of list-last, list-first,
// retrieve-last and retrieve-first: a page window plus an optional listing
// policy.
func ListLastRetrieveFirst(cmd Command, offset, docs int, list Object) *Request {
	return New(cmd).SetOffset(offset).SetDocs(docs).SetList(list)
}

func ListLast(list Object, offset, docs int) *Request {
	return ListLastRetrieveFirst(CmdListLast, offset, docs, list)
}

func ListFirst(list Object, offset, docs int) *Request {
	return ListLastRetrieveFirst(CmdListFirst, offset, docs, list)
}

func RetrieveLast(offset, docs int) *Request {
	return ListLastRetrieveFirst(CmdRetrieveLast, offset, docs, nil)
}

func RetrieveFirst(offset, docs int) *Request {
	return ListLastRetrieveFirst(CmdRetrieveFirst, offset, docs, nil)
}

// --- Paths and facets ---

func ListPaths() *Request { return New(CmdListPaths) }

// ListFacets lists the facet terms under one or more paths.
func ListFacets(paths ...string) *Request {
	return New(CmdListFacets).SetPath(paths...)
}

// --- Similarity family ---

// SimilarDocuments finds documents similar to the document with the given
// id. length is the number of keywords extracted from the source and quota
// the minimum number of those keywords a match must contain. Paging and a
// filtering query are added with SetOffset, SetDocs and SetQuery.
func SimilarDocuments(id string, length, quota int) *Request {
	return New(CmdSimilar).
		SetParam(ParamID, id).
		SetParam(ParamLen, length).
		SetParam(ParamQuota, quota)
}

// SimilarText finds documents similar to a chunk of text. See
// SimilarDocuments for length and quota.
func SimilarText(text string, length, quota int) *Request {
	return New(CmdSimilar).
		SetParam(ParamText, text).
		SetParam(ParamLen, length).
		SetParam(ParamQuota, quota)
}

// --- History ---

// ShowHistory lists the revisions of the given documents. With returnDocs
// the historical content is returned as well.
func ShowHistory(ids []string, returnDocs bool) *Request {
	r := New(CmdShowHistory).SetDocumentIDs(ids...)
	if returnDocs {
		r.SetParam(ParamReturnDoc, ReturnDocYes)
	}
	return r
}

// --- Argument-less commands ---

func Status() *Request { return New(CmdStatus) }

func BeginTransaction() *Request { return New(CmdBeginTransaction) }

func CommitTransaction() *Request { return New(CmdCommitTransaction) }

func RollbackTransaction() *Request { return New(CmdRollbackTransaction) }
