/*
Package ports defines the driven ports (interfaces) of the questionnaire.

These interfaces decouple the engines and the service facade from storage and
coordination backends. Both engines are pure and never see these ports; only
the service layer and the adapters do.

# Key Interfaces

  - QuestionStore: persists the authored question list of each questionnaire.
  - SessionStore: persists respondent flow records.
  - AnswerStore: records answers keyed by session and question ID.
  - DistributedLocker: coordinates access to one key across replicas.

Each store interface has a reusable contract suite (RunQuestionStoreContract,
RunSessionStoreContract, RunAnswerStoreContract) that adapters run in their tests.
*/
package ports
