/*
Package sqldataset reads samples from and writes samples to SQL databases.

The data uses 2 database tables:
  * discreteValues, storing the values of discrete features
  * samples, with a column per feature

Samples are stored on the samples table, with their discrete values as
references to values in the discrete value table. Adapters for each
database engine live in subpackages.
*/
package sqldataset
