/*
Package form implements the diabetes prediction form.

A Controller owns the state of one form instance: the raw text of the eight
measurement fields, whether the result dialog is open, the last outcome and
the notifications waiting to be shown. Every change goes through Reduce, a
pure function over tagged actions:

  - FieldChanged replaces one field.
  - SubmitStarted, SubmitSucceeded and SubmitFailed track one submission.
  - InputRejected reports fields that are not numbers.
  - ModalDismissed closes the dialog.

Submissions are numbered. Only the result of the most recent one may open the
dialog or raise a notification, so a slow response never overwrites a newer one.
*/
package form
