// Package recipe compiles chosen packages into ordered, guarded action
// plans. The compiler is a pure function over fixed per-package tables: no
// I/O, no external calls. Executing a recipe, including evaluating its
// guards, is an external collaborator's job.
package recipe
