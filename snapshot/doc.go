/*
Package snapshot loads and saves system snapshots and analysis configurations
in either JSON or YAML format.

The format is taken from the file name extension: “.yaml” and “.yml” files are
YAML, everything else is JSON. The special file name “-” refers to stdin and
stdout respectively. Stdin is read as YAML, which also accepts JSON, while
stdout is written as JSON unless told otherwise.
*/
package snapshot
