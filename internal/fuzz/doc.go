// Package fuzztests houses Go fuzz harnesses for the marker pipeline
// (source -> unit -> chunk / reconstruct). They guard against panics and
// check that reconstruction always yields an ordered partition.
//
// Назначение: загружать произвольные байты в FileSet и прогонять их через
// go/parser, splitter и реконструкцию.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
