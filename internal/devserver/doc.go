// Package devserver talks to the dev server the exporter renders through.
//
// Client implements export.Server over HTTP:
//
//	GET /_vango/routes                        route manifest
//	GET /<pathname>?mode=production           rendered HTML
//	GET /_vango/functions?mode=production     routes manifest and server functions
//
// Manager starts the dev server command for the duration of an export and
// stops its whole process group afterwards.
package devserver
