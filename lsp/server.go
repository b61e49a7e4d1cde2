// Package lsp serves documents of the dialect over the Language Server
// Protocol. Edits arrive incrementally and are dispatched to the syntax tree
// of each open document.
package lsp

import (
	"context"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/exsitu-projects/ilatex-sub001/latex/document"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "ilatex"

type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string
	opts    []document.Option
	log     commonlog.Logger

	mu    sync.Mutex
	files map[protocol.DocumentUri]*file
}

// NewServer creates a server opening every document with opts.
func NewServer(version string, opts ...document.Option) *Server {
	ls := &Server{
		version: version,
		opts:    opts,
		log:     commonlog.GetLogger("ilatex.lsp"),
		files:   make(map[protocol.DocumentUri]*file),
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
		TextDocumentFoldingRange:   ls.textDocumentFoldingRange,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	clear(ls.files)
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	f := ls.open(params.TextDocument.URI, params.TextDocument.Text)
	ls.publish(ctx, params.TextDocument.URI, f)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	f, ok := ls.file(uri)
	if !ok {
		ls.log.Warningf("change to unknown document %s", uri)
		return nil
	}

	for _, raw := range params.ContentChanges {
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			f = ls.open(uri, change.Text)
		case protocol.TextDocumentContentChangeEvent:
			if change.Range == nil {
				f = ls.open(uri, change.Text)
				continue
			}
			if err := f.apply(context.Background(), *change.Range, change.Text); err != nil {
				ls.log.Errorf("%s: %s", uri, err)
				return err
			}
		}
	}
	f.retry(context.Background())
	ls.publish(ctx, uri, f)
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.mu.Lock()
	delete(ls.files, params.TextDocument.URI)
	ls.mu.Unlock()
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *Server) open(uri protocol.DocumentUri, text string) *file {
	f := openFile(context.Background(), text, ls.opts, ls.log)
	ls.mu.Lock()
	ls.files[uri] = f
	ls.mu.Unlock()
	return f
}

func (ls *Server) file(uri protocol.DocumentUri) (*file, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	f, ok := ls.files[uri]
	return f, ok
}

func (ls *Server) publish(ctx *glsp.Context, uri protocol.DocumentUri, f *file) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: f.diagnostics(),
	})
}

func boolPtr(b bool) *bool {
	return &b
}
