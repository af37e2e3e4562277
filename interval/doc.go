/*Package interval implements interval-union operations over residue
  coordinates of a single sequence.
  Overlapping and touching intervals are merged, not tracked separately.  All
  intervals are 0-based and half-open.
*/
package interval
