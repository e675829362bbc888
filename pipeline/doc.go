/*
Package pipeline runs the stages of a topology analysis strictly one after
another on a shared, mutable result.

The first failing stage halts the pipeline: later stages don't run and the
failure is returned as a [*StageError] naming the stage. The mutations that
stages completed before the failure are not rolled back; instead, [Run] never
hands out the result after a failure.
*/
package pipeline
