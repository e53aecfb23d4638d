/*
Package domain contains the core entities and rules of the questionnaire.

It defines the authored Question, the unvalidated Draft and Patch inputs, the
respondent-side flow vocabulary (statuses, events and the persisted FlowRecord)
and the Answer value recorded by answer stores. The package is pure: no I/O and
no dependency on adapters, so both engines and every adapter can share it.

# Key Entities

  - Question: an authored prompt with a closed Kind and kind-consistent Options.
  - Draft / Patch: boundary input for creating and editing questions.
  - FlowRecord: the durable form of a respondent's position in a questionnaire.
  - Answer: what a respondent said (or skipped) for one question.

Validation lives here too: ParseOptions and ParseDraft handle raw form input,
ValidateQuestion checks entity invariants, ValidateAnswer checks a response
against the question it answers.
*/
package domain
