package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/pl0/compiler"
)

// document is the analyzed state of one open text document.
type document struct {
	text string
	prog *compiler.Program // nil when the text does not parse
	err  error             // first lexical or syntax error
}

// analyze parses text and records the result.
func analyze(uri, text string) *document {
	prog, err := compiler.Parse(uri, text)
	return &document{text: text, prog: prog, err: err}
}

// ErrWorkerStopped is returned by DocWorker calls made after Stop.
var ErrWorkerStopped = errors.New("document worker stopped")

// docRequest represents a unit of work to be executed on the worker goroutine.
type docRequest struct {
	fn   func(docs map[string]*document) interface{}
	done chan docResult
}

// docResult holds the return value from a document operation.
type docResult struct {
	value interface{}
	err   error
}

// DocWorker serializes all access to the open documents through a single
// goroutine. glsp dispatches notifications and requests concurrently, so
// every handler goes through the worker.
type DocWorker struct {
	docs     map[string]*document
	requests chan docRequest
	quit     chan struct{}
	stopOnce sync.Once
}

// NewDocWorker creates a DocWorker and starts the processing goroutine.
func NewDocWorker() *DocWorker {
	w := &DocWorker{
		docs:     make(map[string]*document),
		requests: make(chan docRequest, 64),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *DocWorker) loop() {
	for {
		select {
		case req := <-w.requests:
			req.done <- w.execute(req.fn)
		case <-w.quit:
			return
		}
	}
}

// execute runs fn against the document table, recovering from panics.
func (w *DocWorker) execute(fn func(map[string]*document) interface{}) docResult {
	var result docResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.err = fmt.Errorf("%v", r)
			}
		}()
		result.value = fn(w.docs)
	}()
	return result
}

// Do submits fn for execution on the worker goroutine and blocks until it
// completes. A panic in fn is returned as an error. After Stop, Do returns
// ErrWorkerStopped without running fn.
func (w *DocWorker) Do(fn func(docs map[string]*document) interface{}) (interface{}, error) {
	req := docRequest{
		fn:   fn,
		done: make(chan docResult, 1),
	}
	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, ErrWorkerStopped
	}
	select {
	case result := <-req.done:
		return result.value, result.err
	case <-w.quit:
		return nil, ErrWorkerStopped
	}
}

// Update stores and analyzes a new version of uri.
func (w *DocWorker) Update(uri, text string) (*document, error) {
	v, err := w.Do(func(docs map[string]*document) interface{} {
		d := analyze(uri, text)
		docs[uri] = d
		return d
	})
	if err != nil {
		return nil, err
	}
	return v.(*document), nil
}

// Get returns the current analysis of uri, or nil if it is not open.
func (w *DocWorker) Get(uri string) *document {
	v, err := w.Do(func(docs map[string]*document) interface{} {
		return docs[uri]
	})
	if err != nil || v == nil {
		return nil
	}
	return v.(*document)
}

// Close forgets uri.
func (w *DocWorker) Close(uri string) error {
	_, err := w.Do(func(docs map[string]*document) interface{} {
		delete(docs, uri)
		return nil
	})
	return err
}

// Stop shuts down the worker goroutine. It is safe to call more than once.
func (w *DocWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.quit)
	})
}
